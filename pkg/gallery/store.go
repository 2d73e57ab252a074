package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store provides workspace-scoped gallery operations on Redis. All keys and
// channels are automatically namespaced with the workspace name. The store is
// safe for concurrent use.
//
// The storage model is an append-only log: one immutable record per
// (module key, revision identity), created with SET NX so a concurrent append
// for the same identity can never overwrite, plus a revision thread ZSET per
// module key that orders revisions and answers "latest".
type Store struct {
	rdb       *redis.Client
	workspace string
}

// NewStore creates a gallery store for the given workspace.
// Returns an error if workspace is empty.
func NewStore(redisOpts *redis.Options, workspace string) (*Store, error) {
	if workspace == "" {
		return nil, fmt.Errorf("workspace name cannot be empty")
	}
	return &Store{
		rdb:       redis.NewClient(redisOpts),
		workspace: workspace,
	}, nil
}

// Workspace returns the store's namespace.
func (s *Store) Workspace() string {
	return s.workspace
}

// Close closes the Redis connection. Implements io.Closer.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// maxAppendRetries bounds the optimistic-transaction retries when appends
// to the same module key race.
const maxAppendRetries = 5

// Append writes a new revision of e and returns its stored form.
//
// The write is atomic create-if-absent: record and thread entry are written
// in one transaction guarded by WATCH, so if a revision with the same
// (module key, identity) already exists, including one racing this call,
// Append fails with a CollisionError and the stored content is unchanged.
// The revision number is the record's 1-based position in the thread; a
// failed append never consumes a number. There is no update or delete;
// corrections are new revisions.
func (s *Store) Append(ctx context.Context, e *Entry) (*StoredEntry, error) {
	identity, err := Identity(e)
	if err != nil {
		return nil, err
	}
	moduleKey := e.ModuleKey()
	entryKey := EntryKey(s.workspace, moduleKey, identity)
	threadKey := ThreadKey(s.workspace, moduleKey)

	var stored *StoredEntry
	var record []byte

	txn := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, entryKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check for existing revision: %w", err)
		}
		if exists > 0 {
			return &CollisionError{ModuleKey: moduleKey, Identity: identity}
		}

		threadLen, err := tx.ZCard(ctx, threadKey).Result()
		if err != nil {
			return fmt.Errorf("failed to read revision thread: %w", err)
		}
		rev := int(threadLen) + 1

		stored = &StoredEntry{
			ModuleKey:    moduleKey,
			Identity:     identity,
			Revision:     rev,
			AppendedAtMs: time.Now().UnixMilli(),
			Entry:        *e,
		}
		record, err = json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to serialize revision record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetNX(ctx, entryKey, record, 0)
			pipe.ZAdd(ctx, threadKey, redis.Z{Score: float64(rev), Member: identity})
			return nil
		})
		return err
	}

	for i := 0; i < maxAppendRetries; i++ {
		err := s.rdb.Watch(ctx, txn, entryKey, threadKey)
		if err == redis.TxFailedErr {
			// Another append extended the thread first; re-read and retry.
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := s.rdb.Publish(ctx, AppendEventsChannel(s.workspace), record).Err(); err != nil {
			return nil, fmt.Errorf("failed to publish append event: %w", err)
		}
		return stored, nil
	}
	return nil, fmt.Errorf("failed to append revision of %s: too many concurrent appends", moduleKey)
}

// Get retrieves one revision by module key and full identity.
// Returns a NotFoundError if the revision is absent.
func (s *Store) Get(ctx context.Context, moduleKey, identity string) (*StoredEntry, error) {
	data, err := s.rdb.Get(ctx, EntryKey(s.workspace, moduleKey, identity)).Result()
	if err == redis.Nil {
		return nil, &NotFoundError{ModuleKey: moduleKey, Identity: identity}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read revision record: %w", err)
	}
	return decodeRecord([]byte(data))
}

// Latest retrieves the highest revision of a module key.
// Returns a NotFoundError if the module key has no revisions.
func (s *Store) Latest(ctx context.Context, moduleKey string) (*StoredEntry, error) {
	results, err := s.rdb.ZRevRangeWithScores(ctx, ThreadKey(s.workspace, moduleKey), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read revision thread: %w", err)
	}
	if len(results) == 0 {
		return nil, &NotFoundError{ModuleKey: moduleKey}
	}
	identity, ok := results[0].Member.(string)
	if !ok {
		return nil, fmt.Errorf("corrupt revision thread for %s", moduleKey)
	}
	return s.Get(ctx, moduleKey, identity)
}

// Revisions lists a module key's revision identities in ascending revision
// order. Returns an empty slice if the module key is unknown.
func (s *Store) Revisions(ctx context.Context, moduleKey string) ([]string, error) {
	identities, err := s.rdb.ZRange(ctx, ThreadKey(s.workspace, moduleKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read revision thread: %w", err)
	}
	return identities, nil
}

// ModuleKeys lists every module key in the workspace, sorted.
func (s *Store) ModuleKeys(ctx context.Context) ([]string, error) {
	prefix := fmt.Sprintf("racksmith:%s:thread:", s.workspace)
	keys, err := s.scanKeys(ctx, threadScanPattern(s.workspace))
	if err != nil {
		return nil, err
	}
	moduleKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		moduleKeys = append(moduleKeys, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(moduleKeys)
	return moduleKeys, nil
}

// List retrieves every revision record in the workspace, sorted by
// (module key, revision number) for stable presentation.
func (s *Store) List(ctx context.Context) ([]*StoredEntry, error) {
	keys, err := s.scanKeys(ctx, entryScanPattern(s.workspace))
	if err != nil {
		return nil, err
	}
	entries := make([]*StoredEntry, 0, len(keys))
	for _, k := range keys {
		data, err := s.rdb.Get(ctx, k).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read revision record: %w", err)
		}
		stored, err := decodeRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		entries = append(entries, stored)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModuleKey != entries[j].ModuleKey {
			return entries[i].ModuleKey < entries[j].ModuleKey
		}
		return entries[i].Revision < entries[j].Revision
	})
	return entries, nil
}

// FindByIdentity scans the workspace for revision identities starting with
// the given prefix. Returns matches sorted by identity.
func (s *Store) FindByIdentity(ctx context.Context, prefix string) ([]*StoredEntry, error) {
	keys, err := s.scanKeys(ctx, entryScanPattern(s.workspace))
	if err != nil {
		return nil, err
	}
	var matches []*StoredEntry
	for _, k := range keys {
		// Identity is the final key segment.
		identity := k[strings.LastIndex(k, ":")+1:]
		if !strings.HasPrefix(identity, prefix) {
			continue
		}
		data, err := s.rdb.Get(ctx, k).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read revision record: %w", err)
		}
		stored, err := decodeRecord([]byte(data))
		if err != nil {
			return nil, err
		}
		matches = append(matches, stored)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Identity < matches[j].Identity })
	return matches, nil
}

func (s *Store) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan gallery keys: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func decodeRecord(data []byte) (*StoredEntry, error) {
	var stored StoredEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode revision record: %w", err)
	}
	return &stored, nil
}

// Subscription is an active Pub/Sub subscription to append events. Callers
// must Close it when done; context cancellation also stops it.
type Subscription struct {
	events <-chan *StoredEntry
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of appended revisions. It is closed when the
// subscription closes or its context is cancelled.
func (s *Subscription) Events() <-chan *StoredEntry {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors (for example
// undecodable events). The subscription continues after an error.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Implements io.Closer; safe to call twice.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Watch subscribes to append events for this workspace. Events are delivered
// on a buffered channel; Redis Pub/Sub is at-most-once, so a slow consumer
// may miss events.
func (s *Store) Watch(ctx context.Context) (*Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, AppendEventsChannel(s.workspace))

	eventsChan := make(chan *StoredEntry, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				stored, err := decodeRecord([]byte(msg.Payload))
				if err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to decode append event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}
				select {
				case eventsChan <- stored:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancel,
	}, nil
}
