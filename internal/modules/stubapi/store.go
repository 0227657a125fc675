package stubapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"be4you/internal/model/activitymodel"

	"github.com/google/uuid"
)

type user struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash []byte
	ProfileImage *string
}

type activityRow struct {
	detail    activitymodel.ActivityDetail
	ownerID   string
	createdAt time.Time
}

// memoryData stub server 的内存数据
type memoryData struct {
	mu         sync.RWMutex
	users      map[string]*user // key: 小写邮箱
	activities map[string]*activityRow
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:      make(map[string]*user),
		activities: make(map[string]*activityRow),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *memoryData) findUser(email string) (*user, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[emailKey(email)]
	return u, ok
}

// addUser 邮箱已存在时返回 false
func (d *memoryData) addUser(u *user) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := emailKey(u.Email)
	if _, exists := d.users[key]; exists {
		return false
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	d.users[key] = u
	return true
}

func (d *memoryData) listActivities(ownerID string) []activitymodel.ActivityDetail {
	d.mu.RLock()
	rows := make([]*activityRow, 0, len(d.activities))
	for _, row := range d.activities {
		if row.ownerID == ownerID {
			rows = append(rows, row)
		}
	}
	d.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].createdAt.Before(rows[j].createdAt)
	})
	out := make([]activitymodel.ActivityDetail, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.detail)
	}
	return out
}

func (d *memoryData) getActivity(ownerID, id string) (activitymodel.ActivityDetail, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	row, ok := d.activities[id]
	if !ok || row.ownerID != ownerID {
		return activitymodel.ActivityDetail{}, false
	}
	return row.detail, true
}

func (d *memoryData) createActivity(ownerID string, payload activitymodel.ActivityPayload) activitymodel.ActivityDetail {
	detail := toDetail(uuid.NewString(), ownerID, payload)

	d.mu.Lock()
	d.activities[detail.ID] = &activityRow{detail: detail, ownerID: ownerID, createdAt: time.Now()}
	d.mu.Unlock()
	return detail
}

func (d *memoryData) updateActivity(ownerID, id string, payload activitymodel.ActivityPayload) (activitymodel.ActivityDetail, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.activities[id]
	if !ok || row.ownerID != ownerID {
		return activitymodel.ActivityDetail{}, false
	}
	row.detail = toDetail(id, ownerID, payload)
	return row.detail, true
}

func (d *memoryData) deleteActivity(ownerID, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.activities[id]
	if !ok || row.ownerID != ownerID {
		return false
	}
	delete(d.activities, id)
	return true
}

// toDetail 为没有 id 的物品分配新 id
func toDetail(id, ownerID string, payload activitymodel.ActivityPayload) activitymodel.ActivityDetail {
	items := make([]activitymodel.ActivityItem, 0, len(payload.ActivityItems))
	for _, item := range payload.ActivityItems {
		if item.ID == nil || *item.ID == "" {
			itemID := uuid.NewString()
			item.ID = &itemID
		}
		items = append(items, item)
	}
	return activitymodel.ActivityDetail{
		ID:            id,
		Name:          payload.Activity.Name,
		ActivityTime:  payload.Activity.ActivityTime,
		Location:      payload.Activity.Location,
		ImageData:     payload.Activity.ImageData,
		ActivityItems: items,
		CreatedBy:     ownerID,
	}
}
