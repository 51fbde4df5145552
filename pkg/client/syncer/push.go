package syncer

import (
	"encoding/json"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/client/cache"
	"github.com/heartmarshall/couplefine/pkg/client/realtime"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Mode decides how one table's pushes reach the cache.
type Mode int

const (
	// Patch applies the pushed row with a reducer action.
	Patch Mode = iota
	// Refetch schedules a debounced full load.
	Refetch
)

// Tables with a realtime feed.
var Tables = []string{"couples", "rules", "violations", "rewards", "profiles"}

// PushPolicy maps a table to its Mode. Tables missing from the map refetch.
type PushPolicy map[string]Mode

// DefaultPushPolicy patches every table. Rows carry versions, so a stale
// push loses against the cached row.
func DefaultPushPolicy() PushPolicy {
	return PushPolicy{
		"couples":    Patch,
		"rules":      Patch,
		"violations": Patch,
		"rewards":    Patch,
		"profiles":   Patch,
	}
}

// RefetchPushPolicy refetches on every push except rules and rewards.
func RefetchPushPolicy() PushPolicy {
	return PushPolicy{
		"couples":    Refetch,
		"rules":      Patch,
		"violations": Refetch,
		"rewards":    Patch,
		"profiles":   Refetch,
	}
}

func (p PushPolicy) mode(table string) Mode {
	if m, ok := p[table]; ok {
		return m
	}
	return Refetch
}

// Connected reports whether every channel of the current subscription is
// joined.
func (s *Syncer) Connected() bool { return s.connected.Load() }

// SubscribedCouple returns the couple the feeds are joined for.
func (s *Syncer) SubscribedCouple() uuid.UUID {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	return s.coupleID
}

// Subscribe opens one channel per table for coupleID, replacing any
// previous subscription. Subscribing to the current couple again is a no-op.
func (s *Syncer) Subscribe(coupleID uuid.UUID) {
	if s.rt == nil || coupleID == uuid.Nil {
		return
	}
	s.pushMu.Lock()
	if s.coupleID == coupleID && len(s.channels) > 0 {
		s.pushMu.Unlock()
		return
	}
	old := s.channels
	s.channels = nil
	s.coupleID = coupleID
	s.statuses = map[string]realtime.Status{}
	s.pushMu.Unlock()

	for _, ch := range old {
		_ = ch.Unsubscribe()
	}

	chans := make([]*realtime.Channel, 0, len(Tables))
	for _, table := range Tables {
		ch := s.rt.Channel(wire.Topic(table, coupleID))
		ch.On(realtime.AllEvents, func(c wire.Change) { s.apply(table, c) })
		chans = append(chans, ch)
	}
	s.pushMu.Lock()
	s.channels = chans
	s.pushMu.Unlock()

	for _, ch := range chans {
		topic := ch.Topic()
		ch.Subscribe(func(st realtime.Status, err error) { s.onStatus(coupleID, topic, st, err) })
	}
	s.log.Info("realtime subscribed", slog.String("couple_id", coupleID.String()))
}

// Unsubscribe leaves every channel.
func (s *Syncer) Unsubscribe() {
	s.pushMu.Lock()
	chans := s.channels
	s.channels = nil
	s.coupleID = uuid.Nil
	s.statuses = map[string]realtime.Status{}
	if s.refetch != nil {
		s.refetch.Stop()
		s.refetch = nil
	}
	s.pushMu.Unlock()
	s.connected.Store(false)

	for _, ch := range chans {
		_ = ch.Unsubscribe()
	}
}

func (s *Syncer) onStatus(coupleID uuid.UUID, topic string, st realtime.Status, err error) {
	s.pushMu.Lock()
	if s.coupleID != coupleID {
		s.pushMu.Unlock()
		return
	}
	s.statuses[topic] = st
	all := len(s.statuses) == len(s.channels)
	for _, v := range s.statuses {
		all = all && v == realtime.StatusSubscribed
	}
	s.pushMu.Unlock()
	s.connected.Store(all)

	switch st {
	case realtime.StatusChannelError, realtime.StatusTimedOut:
		attrs := []any{slog.String("topic", topic), slog.String("status", string(st))}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		s.log.Warn("realtime channel down, refreshing", attrs...)
		s.scheduleRefetch()
	}
}

// scheduleRefetch runs a full load RefetchDelay after the last call.
func (s *Syncer) scheduleRefetch() {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	if s.refetch != nil {
		s.refetch.Reset(s.opts.RefetchDelay)
		return
	}
	s.refetch = time.AfterFunc(s.opts.RefetchDelay, func() {
		s.pushMu.Lock()
		s.refetch = nil
		s.pushMu.Unlock()
		if err := s.LoadCoupleData(s.ctx); err != nil && s.ctx.Err() == nil {
			s.log.Warn("refetch failed", slog.String("error", err.Error()))
		}
	})
}

// apply routes one pushed change by table and policy.
func (s *Syncer) apply(table string, c wire.Change) {
	if s.opts.Policy.mode(table) == Refetch {
		s.scheduleRefetch()
		return
	}
	var err error
	switch table {
	case "couples":
		err = s.patchCouple(c)
	case "rules":
		err = s.patchRule(c)
	case "violations":
		err = s.patchViolation(c)
	case "rewards":
		err = s.patchReward(c)
	case "profiles":
		err = s.patchProfile(c)
	default:
		return
	}
	if err != nil {
		s.log.Warn("undecodable change, refreshing",
			slog.String("table", table),
			slog.String("type", c.Type),
			slog.String("error", err.Error()))
		s.scheduleRefetch()
	}
}

type idOnly struct {
	ID uuid.UUID `json:"id"`
}

// deletedID returns the id of a DELETE change from old_record, falling back
// to record.
func deletedID(c wire.Change) (uuid.UUID, error) {
	raw := c.OldRecord
	if len(raw) == 0 {
		raw = c.Record
	}
	var rec idOnly
	if err := json.Unmarshal(raw, &rec); err != nil {
		return uuid.Nil, err
	}
	return rec.ID, nil
}

func (s *Syncer) patchCouple(c wire.Change) error {
	var next wire.Couple
	if err := json.Unmarshal(c.Record, &next); err != nil {
		return err
	}
	prev := s.store.State().Couple
	if prev != nil && prev.Version > next.Version {
		return nil
	}
	if !next.IsActive {
		s.store.Dispatch(cache.ResetState{})
		s.scheduleRefetch()
		return nil
	}
	merged := mergeCouple(prev, &next)
	s.store.Dispatch(cache.SetCouple{Couple: merged})

	// A partner joined or left: the new snapshot needs a fetch.
	if (merged.Partner2ID != nil && merged.Partner2 == nil) || (merged.Partner2ID == nil && prev != nil && prev.Partner2ID != nil) {
		s.scheduleRefetch()
	}
	return nil
}

func (s *Syncer) patchRule(c wire.Change) error {
	if c.Type == wire.ChangeDelete {
		id, err := deletedID(c)
		if err != nil {
			return err
		}
		s.store.Dispatch(cache.DeleteRule{ID: id})
		return nil
	}
	var r wire.Rule
	if err := json.Unmarshal(c.Record, &r); err != nil {
		return err
	}
	switch {
	case !r.IsActive:
		s.store.Dispatch(cache.DeleteRule{ID: r.ID})
	case c.Type == wire.ChangeInsert:
		s.store.Dispatch(cache.AddRule{Rule: r})
	default:
		s.store.Dispatch(cache.UpdateRule{Rule: r})
	}
	return nil
}

func (s *Syncer) patchViolation(c wire.Change) error {
	if c.Type == wire.ChangeDelete {
		id, err := deletedID(c)
		if err != nil {
			return err
		}
		s.store.Dispatch(cache.DeleteViolation{ID: id})
		return nil
	}
	var v wire.Violation
	if err := json.Unmarshal(c.Record, &v); err != nil {
		return err
	}
	v = withViolators([]wire.Violation{v}, s.store.State().Couple)[0]
	if c.Type == wire.ChangeInsert {
		s.store.Dispatch(cache.AddViolation{Violation: v})
	} else {
		s.store.Dispatch(cache.UpdateViolation{Violation: v})
	}
	return nil
}

func (s *Syncer) patchReward(c wire.Change) error {
	if c.Type == wire.ChangeDelete {
		id, err := deletedID(c)
		if err != nil {
			return err
		}
		s.store.Dispatch(cache.DeleteReward{ID: id})
		return nil
	}
	var r wire.Reward
	if err := json.Unmarshal(c.Record, &r); err != nil {
		return err
	}
	if c.Type == wire.ChangeInsert {
		s.store.Dispatch(cache.AddReward{Reward: r})
	} else {
		s.store.Dispatch(cache.UpdateReward{Reward: r})
	}
	return nil
}

// patchProfile refreshes the partner snapshots embedded in the couple and
// in cached violations.
func (s *Syncer) patchProfile(c wire.Change) error {
	if c.Type == wire.ChangeDelete {
		return nil
	}
	var p wire.Profile
	if err := json.Unmarshal(c.Record, &p); err != nil {
		return err
	}
	st := s.store.State()
	var actions []cache.Action
	if st.User != nil && st.User.ID == p.ID && p.Version >= st.User.Version {
		actions = append(actions, cache.SetUser{User: &p})
	}
	if st.Couple != nil {
		next := *st.Couple
		switch {
		case next.Partner1ID == p.ID:
			next.Partner1 = &p
		case next.Partner2ID != nil && *next.Partner2ID == p.ID:
			next.Partner2 = &p
		}
		actions = append(actions, cache.SetCouple{Couple: &next})

		vs := slices.Clone(st.Violations)
		for i := range vs {
			if vs[i].ViolatorUserID == p.ID {
				vs[i].Violator = &p
			}
		}
		actions = append(actions, cache.SetViolations{Violations: vs})
	}
	if len(actions) > 0 {
		s.store.Dispatch(actions...)
	}
	return nil
}
