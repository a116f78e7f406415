// Package discord is the dispatch boundary: it registers the slash
// commands, turns interactions into state-machine calls with a resolved
// caller identity, and renders the structured results back to the
// channel. Validation and authorization failures are always answered
// ephemerally; phase announcements go to the whole channel.
package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"mapveto/internal/app"
	"mapveto/internal/clock"
	"mapveto/internal/config"
	"mapveto/internal/domain"
	"mapveto/internal/store"
)

// Bot wires a Discord session to the veto service and session store.
type Bot struct {
	session *discordgo.Session
	cfg     *config.Config
	svc     *app.Service
	store   *store.Store
	log     *logrus.Logger

	registered []*discordgo.ApplicationCommand
}

// New builds the bot around an authenticated-but-unopened Discord
// session. The store and its inactivity supervisor are owned here so
// expiry notifications can be posted back to the channel.
func New(token string, cfg *config.Config, svc *app.Service, log *logrus.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}

	b := &Bot{
		session: session,
		cfg:     cfg,
		svc:     svc,
		log:     log,
	}
	b.store = store.New(cfg.IdleTimeout(), clock.Real(), b.notifyExpiry, log)

	session.Identify.Intents = discordgo.IntentsGuilds
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway connection and syncs the slash commands to
// the configured guild.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, b.cfg.GuildID, commandDefinitions())
	if err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}
	b.registered = registered
	b.log.WithField("commands", len(registered)).Info("slash commands synced")
	return nil
}

// Stop unregisters the commands and closes the gateway connection.
func (b *Bot) Stop() {
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.cfg.GuildID, cmd.ID); err != nil {
			b.log.WithError(err).WithField("command", cmd.Name).Warn("failed to unregister command")
		}
	}
	if err := b.session.Close(); err != nil {
		b.log.WithError(err).Warn("failed to close discord session")
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.WithField("user", r.User.Username).Info("connected to Discord")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatch(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.autocomplete(s, i)
	}
}

func (b *Bot) dispatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	log := b.log.WithFields(logrus.Fields{"command": data.Name, "channel": i.ChannelID})

	switch data.Name {
	case "match":
		b.handleMatch(s, i)
	case "order":
		b.handleOperation(s, i, func(sess *domain.Session, c domain.Caller) (*app.Result, error) {
			return b.svc.SetBanOrder(sess, optionString(data, "choice"), c)
		})
	case "map_ban":
		b.handleOperation(s, i, func(sess *domain.Session, c domain.Caller) (*app.Result, error) {
			return b.svc.BanMap(sess, optionString(data, "map"), c)
		})
	case "map_pick":
		b.handleOperation(s, i, func(sess *domain.Session, c domain.Caller) (*app.Result, error) {
			return b.svc.PickMap(sess, optionString(data, "map"), c)
		})
	case "map_final":
		b.handleOperation(s, i, func(sess *domain.Session, c domain.Caller) (*app.Result, error) {
			return b.svc.SetFinalPool(sess, optionString(data, "choice"), c)
		})
	case "clear":
		b.handleClear(s, i)
	case "help":
		b.respond(s, i, helpText, false)
	default:
		log.Warn("unknown command")
	}
}

func (b *Bot) handleMatch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	pool := optionString(data, "pool")
	if pool == "" {
		pool = b.cfg.DefaultPool
	}
	team1 := optionString(data, "team1")
	team2 := optionString(data, "team2")

	b.handleOperation(s, i, func(sess *domain.Session, c domain.Caller) (*app.Result, error) {
		return b.svc.StartMatch(sess, team1, team2, pool, c)
	})
}

// handleOperation runs one state-machine call under the channel's
// session lock and renders the outcome. Errors never mutate the session
// and are reported only to the caller.
func (b *Bot) handleOperation(s *discordgo.Session, i *discordgo.InteractionCreate, op func(*domain.Session, domain.Caller) (*app.Result, error)) {
	caller := b.caller(s, i)

	var res *app.Result
	err := b.store.Update(i.ChannelID, func(sess *domain.Session) (bool, error) {
		r, opErr := op(sess, caller)
		if opErr != nil {
			return false, opErr
		}
		res = r
		return r.Destroy, nil
	})
	if err != nil {
		b.respond(s, i, userMessage(err), true)
		return
	}

	out := render(res)
	b.respond(s, i, out.content, res.Audience == app.AudienceCaller)
	if out.followupText != "" {
		b.followupText(s, i, out.followupText)
	}
	if out.embed != nil {
		b.followupEmbed(s, i, out.embed)
	}
}

func (b *Bot) handleClear(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.store.Destroy(i.ChannelID)
	b.respond(s, i, "Map selection has been cleared. Use `/match` to start again.", false)
}

// caller builds the state machine's caller identity from the
// interaction member: resolved role names plus the admin flag.
func (b *Bot) caller(s *discordgo.Session, i *discordgo.InteractionCreate) domain.Caller {
	c := domain.Caller{}
	if i.Member != nil && i.Member.User != nil {
		c.ID = i.Member.User.ID
	}
	c.Roles = b.roleNames(s, i)
	for _, role := range c.Roles {
		for _, admin := range b.cfg.AdminRoles {
			if role == admin {
				c.Admin = true
			}
		}
	}
	return c
}

// roleNames maps the member's role ID snowflakes to role names via the
// guild state, falling back to the API when the cache is cold.
func (b *Bot) roleNames(s *discordgo.Session, i *discordgo.InteractionCreate) []string {
	if i.Member == nil {
		return nil
	}
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		guild, err = s.Guild(i.GuildID)
		if err != nil {
			b.log.WithError(err).WithField("guild", i.GuildID).Warn("cannot resolve guild roles")
			return nil
		}
	}
	byID := make(map[string]string, len(guild.Roles))
	for _, role := range guild.Roles {
		byID[role.ID] = role.Name
	}
	names := make([]string, 0, len(i.Member.Roles))
	for _, id := range i.Member.Roles {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.WithError(err).Warn("failed to respond to interaction")
	}
}

func (b *Bot) followupText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: content}); err != nil {
		b.log.WithError(err).Warn("failed to send followup")
	}
}

func (b *Bot) followupEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		b.log.WithError(err).Warn("failed to send summary embed")
	}
}

// notifyExpiry posts the inactivity notice. Best-effort: a delivery
// failure is logged and dropped.
func (b *Bot) notifyExpiry(channelID string, idle time.Duration) {
	msg := fmt.Sprintf("Map selection has timed out after %.0f hour(s) of inactivity and has been cleared.", idle.Hours())
	if _, err := b.session.ChannelMessageSend(channelID, msg); err != nil {
		b.log.WithError(err).WithField("channel", channelID).Warn("failed to deliver expiry notice")
	}
}

func optionString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}
