package app

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"gopkg.in/telebot.v3"

	"github.com/k1bu/FORBETRA-sub000/internal/domain/alert"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coach"
	"github.com/k1bu/FORBETRA-sub000/internal/domain/coaching"
	idb "github.com/k1bu/FORBETRA-sub000/internal/infra/database"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeCoachRepo struct {
	byTelegram map[int64]*coach.Coach
	nextID     int64
	listErr    error
}

func newFakeCoachRepo(coaches ...*coach.Coach) *fakeCoachRepo {
	r := &fakeCoachRepo{byTelegram: make(map[int64]*coach.Coach), nextID: 100}
	for _, c := range coaches {
		r.byTelegram[c.TelegramID] = c
	}
	return r
}

func (r *fakeCoachRepo) Create(_ context.Context, c *coach.Coach) error {
	if _, ok := r.byTelegram[c.TelegramID]; ok {
		return idb.ErrDuplicateTelegramID
	}
	r.nextID++
	c.ID = r.nextID
	r.byTelegram[c.TelegramID] = c
	return nil
}

func (r *fakeCoachRepo) GetByID(_ context.Context, id int64) (*coach.Coach, error) {
	for _, c := range r.byTelegram {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, idb.ErrCoachNotFound
}

func (r *fakeCoachRepo) GetByTelegramID(_ context.Context, telegramID int64) (*coach.Coach, error) {
	c, ok := r.byTelegram[telegramID]
	if !ok {
		return nil, idb.ErrCoachNotFound
	}
	return c, nil
}

func (r *fakeCoachRepo) Update(_ context.Context, c *coach.Coach) error {
	if _, ok := r.byTelegram[c.TelegramID]; !ok {
		return idb.ErrCoachNotFound
	}
	r.byTelegram[c.TelegramID] = c
	return nil
}

func (r *fakeCoachRepo) ListActive(ctx context.Context) ([]*coach.Coach, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*coach.Coach, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (r *fakeCoachRepo) ListAll(context.Context) ([]*coach.Coach, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*coach.Coach, 0, len(r.byTelegram))
	for _, c := range r.byTelegram {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeSnapshotRepo struct {
	snapshots map[int64]*coaching.Snapshot
	byCoach   map[int64][]coaching.ActiveCycle
	listErr   map[int64]error
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{
		snapshots: make(map[int64]*coaching.Snapshot),
		byCoach:   make(map[int64][]coaching.ActiveCycle),
		listErr:   make(map[int64]error),
	}
}

// add registers a snapshot under its cycle's coach.
func (r *fakeSnapshotRepo) add(snap *coaching.Snapshot) {
	r.snapshots[snap.Cycle.ID] = snap
	r.byCoach[snap.Cycle.CoachID] = append(r.byCoach[snap.Cycle.CoachID], coaching.ActiveCycle{
		CycleID:    snap.Cycle.ID,
		ClientID:   snap.Cycle.ClientID,
		ClientName: snap.ClientName,
		StartDate:  snap.Cycle.StartDate,
	})
}

func (r *fakeSnapshotRepo) LoadSnapshot(_ context.Context, cycleID int64) (*coaching.Snapshot, error) {
	snap, ok := r.snapshots[cycleID]
	if !ok {
		return nil, idb.ErrCycleNotFound
	}
	return snap, nil
}

func (r *fakeSnapshotRepo) ListActiveCycles(_ context.Context, coachID int64, _ time.Time) ([]coaching.ActiveCycle, error) {
	if err := r.listErr[coachID]; err != nil {
		return nil, err
	}
	return r.byCoach[coachID], nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	args := m.Called(recipientChatID, text, options)
	return args.Error(0)
}

type fakeRecorder struct {
	alerts    map[alert.Kind]int
	delivered map[bool]int
	runs      []DigestStats
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{alerts: make(map[alert.Kind]int), delivered: make(map[bool]int)}
}

func (r *fakeRecorder) AlertRaised(kind alert.Kind, _ alert.Severity) { r.alerts[kind]++ }
func (r *fakeRecorder) DigestDelivered(ok bool)                       { r.delivered[ok]++ }
func (r *fakeRecorder) DigestRunFinished(stats DigestStats, _ time.Duration) {
	r.runs = append(r.runs, stats)
}
