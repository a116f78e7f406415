package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"mapveto/internal/app"
)

// summaryColor is the accent used on the final match summary embed.
const summaryColor = 0xFC9B28

// rendered is a result flattened to Discord surface: the interaction
// response plus an optional followup (plain text or an embed).
type rendered struct {
	content      string
	followupText string
	embed        *discordgo.MessageEmbed
}

// render turns a structured result payload into channel messages.
func render(res *app.Result) rendered {
	switch p := res.Payload.(type) {
	case app.MatchStarted:
		return rendered{content: fmt.Sprintf(
			"**%s** vs **%s**\n\nMap selection started! The map pool will be **%s**.\nPerforming a coin toss...\n\n"+
				"**%s** wins the coin toss! Pick your team's ban order using `/order`.\nIf you ban first, you pick second.",
			p.Team1, p.Team2, p.PoolName, p.Winner)}

	case app.OrderChosen:
		return rendered{content: fmt.Sprintf(
			"%s has chosen to ban **%s**.\n\n**%s**, please ban a map using `/map_ban`.",
			p.Winner, p.Choice, p.FirstToBan)}

	case app.MapBanned:
		if p.BansComplete {
			return rendered{content: fmt.Sprintf(
				"%s has banned: **%s**\n\nBanning phase complete!\n\n**%s**, please begin the picking phase using `/map_pick`.",
				p.Team, p.Map, p.NextTeam)}
		}
		return rendered{content: fmt.Sprintf(
			"%s has banned: **%s**\n\n**%s**, please ban a map using `/map_ban`.",
			p.Team, p.Map, p.NextTeam)}

	case app.MapPicked:
		verb := "picked"
		if p.Wildcard {
			verb = "invoked the wildcard and drawn"
		}
		if p.PicksComplete {
			return rendered{
				content: fmt.Sprintf("%s has %s: **%s**\n\nPicking phase complete!", p.Team, verb, p.Map),
				followupText: fmt.Sprintf(
					"**%s** and **%s**, choose the pool for the final map using `/map_final`.\n"+
						"The **Wildcard** pool is used only if both teams ask for it; otherwise the final map is drawn from the remaining **Standard** maps.",
					p.Team1, p.Team2),
			}
		}
		return rendered{content: fmt.Sprintf(
			"%s has %s: **%s**\n\n**%s**, please pick a map using `/map_pick`.",
			p.Team, verb, p.Map, p.NextTeam)}

	case app.FinalPoolPending:
		return rendered{content: fmt.Sprintf(
			"%s wants to play a map from the __%s__ map pool.\nWaiting for **%s** to submit their preference.",
			p.Team, p.Choice, p.Waiting)}

	case app.VetoComplete:
		return rendered{
			content: fmt.Sprintf(
				"The final map will be drawn from the __%s__ map pool!\nRandomly selecting...\n\nThe final map is: **%s**",
				p.Pool, p.Maps[2].Map),
			embed: summaryEmbed(p),
		}
	}
	return rendered{}
}

// summaryEmbed lays out the complete veto outcome: the three maps in
// played order with pick attribution, then each team's ban.
func summaryEmbed(p app.VetoComplete) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, 5)
	for n, m := range p.Maps {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Map %d", n+1),
			Value: fmt.Sprintf("**%s** (picked by %s)", m.Map, m.PickedBy),
		})
	}
	for _, ban := range p.Bans {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("Banned by %s", ban.Team),
			Value:  ban.Map,
			Inline: true,
		})
	}
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("%s vs %s", p.Team1, p.Team2),
		Color:  summaryColor,
		Fields: fields,
	}
}

// userMessage formats an operation error for the ephemeral reply.
func userMessage(err error) string {
	return "Cannot do that: " + err.Error()
}
