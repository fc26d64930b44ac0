package slack

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL of the channel name cache
	DefaultCacheTTL = 10 * time.Minute
)

// channelIDPattern matches public (C), private (G) and shared (D) channel IDs
var channelIDPattern = regexp.MustCompile(`^[CGD][A-Z0-9]{6,}$`)

// cacheEntry holds a resolved channel ID with expiration
type cacheEntry struct {
	id        string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api      *slack.Client
	apiOpts  []slack.Option
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client)

// WithCacheTTL sets the TTL of the channel name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client) {
		c.cacheTTL = ttl
	}
}

// WithAPIURL points the client at another API endpoint
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiOpts = append(c.apiOpts, slack.OptionAPIURL(url))
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		cacheTTL: DefaultCacheTTL,
		cache:    make(map[string]cacheEntry),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.api = slack.New(token, c.apiOpts...)

	return c, nil
}

// ListJoinedChannels retrieves the list of channels the bot has joined
func (c *client) ListJoinedChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	var cursor string

	for {
		params := &slack.GetConversationsParameters{
			Types:           []string{"public_channel"},
			ExcludeArchived: true,
			Limit:           100,
			Cursor:          cursor,
		}

		convs, nextCursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get conversations")
		}

		for _, conv := range convs {
			if conv.IsMember {
				channels = append(channels, Channel{
					ID:   conv.ID,
					Name: conv.Name,
				})
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return channels, nil
}

// ResolveChannelID accepts a channel ID as is and looks names up among the
// joined channels
func (c *client) ResolveChannelID(ctx context.Context, channel string) (string, error) {
	name := normalizeChannelName(channel)
	if name == "" {
		return "", goerr.New("channel is empty")
	}
	if channelIDPattern.MatchString(strings.TrimSpace(channel)) {
		return strings.TrimSpace(channel), nil
	}

	now := time.Now()
	c.mu.RLock()
	entry, ok := c.cache[name]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.id, nil
	}

	channels, err := c.ListJoinedChannels(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve channel", goerr.V("channel", channel))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		c.cache[ch.Name] = cacheEntry{id: ch.ID, expiresAt: now.Add(c.cacheTTL)}
	}

	if entry, ok := c.cache[name]; ok {
		return entry.id, nil
	}
	return "", goerr.New("bot is not a member of the channel", goerr.V("channel", channel))
}

// PostMessage posts a Block Kit message to a channel
func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}

// normalizeChannelName strips the leading "#" and lowercases the name
func normalizeChannelName(channel string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(channel), "#"))
}
