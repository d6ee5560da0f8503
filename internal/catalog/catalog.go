// Package catalog loads conversation topics and hidden tasks and assigns
// them to new sessions.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/s376930/Chat-Arena/internal/config"
)

// ErrEmpty is returned when a pairing is attempted with no topics or tasks
// loaded.
var ErrEmpty = errors.New("no topics or tasks available")

// Item is a single topic or task entry.
type Item struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type fileData struct {
	Topics []Item `json:"topics"`
	Tasks  []Item `json:"tasks"`
}

// Catalog holds the loaded topic and task pools. The pools are read-only
// after load except through Reload, which swaps them atomically.
type Catalog struct {
	mu       sync.RWMutex
	path     string
	policy   config.TopicPolicy
	topics   []Item
	tasks    []Item
	rotation int
}

// Load reads topics and tasks from a JSON file. A missing file yields an
// empty catalog rather than an error, matching the data-file contract.
func Load(path string, policy config.TopicPolicy) (*Catalog, error) {
	c := &Catalog{path: path, policy: policy}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the backing file, replacing the in-memory pools.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.mu.Lock()
		c.topics, c.tasks = nil, nil
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read topics/tasks file: %w", err)
	}

	var parsed fileData
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse topics/tasks file: %w", err)
	}

	c.mu.Lock()
	c.topics = parsed.Topics
	c.tasks = parsed.Tasks
	c.mu.Unlock()
	return nil
}

// Topics returns a copy of the topic pool.
func (c *Catalog) Topics() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.topics...)
}

// Tasks returns a copy of the task pool.
func (c *Catalog) Tasks() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.tasks...)
}

// PickTopic selects a topic for a new session according to the configured
// policy: uniformly at random, or round-robin rotation.
func (c *Catalog) PickTopic() (Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.topics) == 0 {
		return Item{}, ErrEmpty
	}
	if c.policy == config.TopicRotation {
		item := c.topics[c.rotation%len(c.topics)]
		c.rotation++
		return item, nil
	}
	return c.topics[rand.Intn(len(c.topics))], nil
}

// PickTasks draws one task per slot. The two draws differ whenever the pool
// has at least two entries; with a single-entry pool both slots receive the
// same task.
func (c *Catalog) PickTasks() (a, b Item, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch len(c.tasks) {
	case 0:
		return Item{}, Item{}, ErrEmpty
	case 1:
		return c.tasks[0], c.tasks[0], nil
	default:
		perm := rand.Perm(len(c.tasks))
		return c.tasks[perm[0]], c.tasks[perm[1]], nil
	}
}
