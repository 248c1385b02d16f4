package db

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TableProjects     = "projects"
	TableInstallments = "installments"
	TableExpenses     = "expenses"
	TableDailyLogs    = "daily_logs"
	TableUsers        = "users"
)

type ChangeAction uint8

const (
	ActionInsert ChangeAction = 1 << iota
	ActionUpdate
	ActionDelete

	ActionAll = ActionInsert | ActionUpdate | ActionDelete
)

func (action ChangeAction) String() string {
	switch action {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionInsert | ActionUpdate:
		return "upsert"
	default:
		return "mixed"
	}
}

func (action ChangeAction) MarshalText() ([]byte, error) {
	return []byte(action.String()), nil
}

type ChangeEvent struct {
	Table     string       `json:"table"`
	Action    ChangeAction `json:"action"`
	UserID    uint         `json:"user_id"`
	ProjectID uint         `json:"project_id,omitempty"`
	RowID     uint         `json:"row_id,omitempty"`
	At        time.Time    `json:"at"`
}

// ChangeFilter narrows a subscription. Zero fields match everything.
type ChangeFilter struct {
	UserID    uint
	ProjectID uint
}

func (filter ChangeFilter) matches(event ChangeEvent) bool {
	if filter.UserID != 0 && filter.UserID != event.UserID {
		return false
	}
	if filter.ProjectID != 0 && filter.ProjectID != event.ProjectID {
		return false
	}
	return true
}

type Subscription struct {
	ID     string
	Events <-chan ChangeEvent

	table  string
	filter ChangeFilter
	mask   ChangeAction
	events chan ChangeEvent
}

// ChangeFeed fans repository writes out to subscribers. Delivery is best
// effort: a subscriber whose buffer is full misses the event and is expected
// to refetch.
type ChangeFeed struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscription
	bufferSize  int
	now         func() time.Time
}

func NewChangeFeed(bufferSize int) *ChangeFeed {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &ChangeFeed{
		subscribers: make(map[string]*Subscription),
		bufferSize:  bufferSize,
		now:         time.Now,
	}
}

// Subscribe registers interest in one table ("" for all tables).
func (feed *ChangeFeed) Subscribe(table string, filter ChangeFilter, mask ChangeAction) *Subscription {
	if mask == 0 {
		mask = ActionAll
	}
	events := make(chan ChangeEvent, feed.bufferSize)
	subscription := &Subscription{
		ID:     uuid.NewString(),
		Events: events,
		table:  table,
		filter: filter,
		mask:   mask,
		events: events,
	}

	feed.mu.Lock()
	feed.subscribers[subscription.ID] = subscription
	feed.mu.Unlock()
	return subscription
}

func (feed *ChangeFeed) Unsubscribe(subscription *Subscription) {
	if subscription == nil {
		return
	}
	feed.mu.Lock()
	defer feed.mu.Unlock()
	if _, ok := feed.subscribers[subscription.ID]; !ok {
		return
	}
	delete(feed.subscribers, subscription.ID)
	close(subscription.events)
}

func (feed *ChangeFeed) SubscriberCount() int {
	feed.mu.RLock()
	defer feed.mu.RUnlock()
	return len(feed.subscribers)
}

func (feed *ChangeFeed) Publish(event ChangeEvent) {
	if feed == nil {
		return
	}
	if event.At.IsZero() {
		event.At = feed.now()
	}

	feed.mu.RLock()
	defer feed.mu.RUnlock()
	for _, subscription := range feed.subscribers {
		if subscription.table != "" && subscription.table != event.Table {
			continue
		}
		if subscription.mask&event.Action == 0 || !subscription.filter.matches(event) {
			continue
		}
		select {
		case subscription.events <- event:
		default:
		}
	}
}
