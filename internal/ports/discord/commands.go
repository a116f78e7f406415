package discord

import "github.com/bwmarrin/discordgo"

const helpText = "**Map selection commands**\n" +
	"`/match team1 team2 [pool]` — start a match and perform the coin toss.\n" +
	"`/order choice` — coin toss winner picks whether their team bans First or Second.\n" +
	"`/map_ban map` — ban a map from the standard pool (one ban per team, alternating).\n" +
	"`/map_pick map` — pick a map, or submit `INVOKE WILDCARD` to draw a random wildcard map.\n" +
	"`/map_final choice` — choose the pool for the final map (Standard or Wildcard). " +
	"The Wildcard pool is used only when both teams ask for it.\n" +
	"`/clear` — abandon the current map selection in this channel.\n\n" +
	"If you ban first, you pick second. Team commands require the matching team role; " +
	"admins may act for either team."

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "match",
			Description: "Start map selection for a match between two teams",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "team1",
					Description:  "First team",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "team2",
					Description:  "Second team",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "pool",
					Description:  "Map pool to use (defaults to the current season)",
					Required:     false,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "order",
			Description: "Coin toss winner: choose whether your team bans First or Second",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "choice",
					Description:  "First or Second",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "map_ban",
			Description: "Ban a map from the standard pool",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "map",
					Description:  "Map to ban",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "map_pick",
			Description: "Pick a map for your team, or invoke the wildcard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "map",
					Description:  "Map to pick, or INVOKE WILDCARD",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "map_final",
			Description: "Choose which pool the final map is drawn from",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "choice",
					Description:  "Standard or Wildcard",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "clear",
			Description: "Abandon the current map selection in this channel",
		},
		{
			Name:        "help",
			Description: "Explain the map selection procedure and commands",
		},
	}
}
