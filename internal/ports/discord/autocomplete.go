package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"mapveto/internal/app"
	"mapveto/internal/domain"
)

// maxChoices is Discord's cap on autocomplete suggestions.
const maxChoices = 25

func (b *Bot) autocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var focused *discordgo.ApplicationCommandInteractionDataOption
	for _, opt := range data.Options {
		if opt.Focused {
			focused = opt
			break
		}
	}
	if focused == nil {
		return
	}

	options := b.suggestions(data.Name, focused.Name, i.ChannelID)
	choices := filterChoices(options, focused.StringValue())

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		b.log.WithError(err).Warn("failed to respond to autocomplete")
	}
}

// suggestions returns the full candidate list for one command option;
// the caller narrows it against the typed prefix.
func (b *Bot) suggestions(command, option, channelID string) []string {
	switch command {
	case "match":
		if option == "pool" {
			return b.cfg.PoolNames()
		}
		return append([]string{domain.MixedTeam}, b.svc.Teams().Names()...)
	case "order":
		return []string{"First", "Second"}
	case "map_ban":
		return b.remainingStandard(channelID)
	case "map_pick":
		return append(b.remainingStandard(channelID), app.WildcardSentinel)
	case "map_final":
		return []string{"Standard", "Wildcard"}
	}
	return nil
}

// remainingStandard snapshots the channel session's still-available
// standard maps. An idle channel yields no suggestions.
func (b *Bot) remainingStandard(channelID string) []string {
	var names []string
	b.store.Peek(channelID, func(sess *domain.Session) {
		if sess.Remaining != nil {
			names = sess.Remaining.InCategory(domain.CategoryStandard)
		}
	})
	return names
}

// filterChoices keeps the options containing the typed text,
// case-insensitively, capped at Discord's limit.
func filterChoices(options []string, typed string) []*discordgo.ApplicationCommandOptionChoice {
	needle := strings.ToLower(typed)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for _, opt := range options {
		if !strings.Contains(strings.ToLower(opt), needle) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: opt, Value: opt})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
