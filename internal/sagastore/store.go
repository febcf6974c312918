package sagastore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dshills/panelgap/internal/redact"
	"github.com/dshills/panelgap/internal/review"
)

// Defaults for the saga event stream layout.
const (
	DefaultStreamPrefix = "dev_team:saga_events:"
	DefaultEventType    = "ao_panel_completed"
	unknownExpert       = "Unknown"
	scanCount           = 100
)

// Options configures a Store.
type Options struct {
	Addr         string
	Password     string
	DB           int
	StreamPrefix string
	// EventType is matched as a substring of each event's event_type.
	EventType string
	Redact    bool
	Log       *zap.SugaredLogger
}

// Store reads panel results from per-packet saga event streams.
type Store struct {
	rdb       *redis.Client
	prefix    string
	eventType string
	redact    bool
	log       *zap.SugaredLogger
}

// PanelResult is one completed panel run recorded on a packet's stream.
type PanelResult struct {
	Packet   string
	EventID  string
	Approved bool
	Issues   []review.Issue
}

type panelDetails struct {
	Approved *bool        `json:"approved"`
	Issues   []panelIssue `json:"issues"`
}

type panelIssue struct {
	Severity    string `json:"severity"`
	Expert      string `json:"expert"`
	Description string `json:"description"`
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s := NewWithClient(rdb, opts)
	s.log.Debugw("connected to redis", "addr", opts.Addr, "db", opts.DB)
	return s, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, opts Options) *Store {
	s := &Store{
		rdb:       rdb,
		prefix:    opts.StreamPrefix,
		eventType: opts.EventType,
		redact:    opts.Redact,
		log:       opts.Log,
	}
	if s.prefix == "" {
		s.prefix = DefaultStreamPrefix
	}
	if s.eventType == "" {
		s.eventType = DefaultEventType
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	return s
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// PacketResults returns the panel results recorded for packet. The exact
// stream is read first; when it is empty the first non-empty stream whose key
// contains packet is used.
func (s *Store) PacketResults(ctx context.Context, packet string) ([]PanelResult, error) {
	key := s.prefix + packet
	msgs, err := s.rdb.XRange(ctx, key, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("reading stream %s: %w", key, err)
	}

	if len(msgs) == 0 {
		keys, err := s.scan(ctx, s.prefix+"*"+packet+"*")
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			msgs, err = s.rdb.XRange(ctx, k, "-", "+").Result()
			if err != nil {
				return nil, fmt.Errorf("reading stream %s: %w", k, err)
			}
			if len(msgs) > 0 {
				key = k
				break
			}
		}
	}

	return s.panelResults(key, msgs), nil
}

// RecentRejections returns issues from rejected panel runs across all
// packet streams, at most limit*10 of them. Streams are visited in key order.
func (s *Store) RecentRejections(ctx context.Context, limit int) ([]review.Issue, error) {
	if limit <= 0 {
		limit = 5
	}
	maxIssues := limit * 10

	keys, err := s.scan(ctx, s.prefix+"*")
	if err != nil {
		return nil, err
	}

	var issues []review.Issue
	for _, k := range keys {
		msgs, err := s.rdb.XRange(ctx, k, "-", "+").Result()
		if err != nil {
			s.log.Warnw("skipping stream", "key", k, "error", err)
			continue
		}
		for _, r := range s.panelResults(k, msgs) {
			if r.Approved {
				continue
			}
			issues = append(issues, r.Issues...)
			if len(issues) >= maxIssues {
				return issues[:maxIssues], nil
			}
		}
	}
	return issues, nil
}

func (s *Store) scan(ctx context.Context, match string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, match, scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", match, err)
	}
	sort.Strings(keys)
	return slices.Compact(keys), nil
}

func (s *Store) panelResults(key string, msgs []redis.XMessage) []PanelResult {
	packet := key[strings.LastIndex(key, ":")+1:]
	var results []PanelResult
	for _, m := range msgs {
		eventType, _ := m.Values["event_type"].(string)
		if !strings.Contains(eventType, s.eventType) {
			continue
		}
		raw, _ := m.Values["details"].(string)
		if raw == "" {
			raw = "{}"
		}
		if s.redact {
			raw = redact.Secrets(raw)
		}
		var d panelDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			s.log.Warnw("skipping malformed panel event", "key", key, "id", m.ID, "error", err)
			continue
		}
		results = append(results, PanelResult{
			Packet:   packet,
			EventID:  m.ID,
			Approved: d.Approved == nil || *d.Approved,
			Issues:   d.toIssues(packet),
		})
	}
	return results
}

func (d panelDetails) toIssues(packet string) []review.Issue {
	verdict := "REJECTED"
	if d.Approved == nil || *d.Approved {
		verdict = "APPROVED"
	}
	issues := make([]review.Issue, 0, len(d.Issues))
	for _, pi := range d.Issues {
		expert := strings.TrimSpace(pi.Expert)
		if expert == "" {
			expert = unknownExpert
		}
		issues = append(issues, review.Issue{
			Severity:    review.NormalizeSeverity(pi.Severity),
			Category:    expert,
			Verdict:     verdict,
			Description: review.Truncate(strings.TrimSpace(pi.Description), review.MaxDescriptionLen),
			File:        packet,
			Source:      review.SourcePanel,
		})
	}
	return issues
}
