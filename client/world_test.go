package client

import (
	"testing"
	"time"

	"github.com/veikko/skystrike/internal/domain"
)

func newTestWorld() *World {
	w := NewWorld()
	w.SetSelf(domain.Player{ID: "me", Name: "me", X: 400, Y: 500, Health: 100})
	w.ApplyPlayerJoined(domain.Player{ID: "other", Name: "other", X: 300, Y: 500, Health: 100})
	return w
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestApplyPlayerUpdateOverwritesRemote(t *testing.T) {
	w := newTestWorld()
	w.ApplyPlayerUpdate("other", domain.PlayerPatch{X: fptr(10), Health: iptr(40)})

	p, ok := w.Player("other")
	if !ok {
		t.Fatal("remote player missing")
	}
	if p.X != 10 || p.Health != 40 {
		t.Fatalf("update not applied: x=%f health=%d", p.X, p.Health)
	}
	if p.Y != 500 {
		t.Fatalf("unset field overwritten: y=%f", p.Y)
	}
}

func TestApplyPlayerUpdateIgnoresOwnEcho(t *testing.T) {
	w := newTestWorld()
	w.ApplyPlayerUpdate("me", domain.PlayerPatch{X: fptr(1)})

	self, _ := w.Self()
	if self.X != 400 {
		t.Fatalf("own echo rolled back prediction: x=%f", self.X)
	}
}

func TestApplyGameStateReplacesWholesale(t *testing.T) {
	w := newTestWorld()
	w.ApplyGameState([]domain.Enemy{{ID: "e1"}, {ID: "e2"}}, nil)
	w.ApplyGameState([]domain.Enemy{{ID: "e3"}}, []domain.PowerUp{{ID: "p1"}})

	es := w.Enemies()
	if len(es) != 1 || es[0].ID != "e3" {
		t.Fatalf("snapshot merged instead of replaced: %+v", es)
	}
	if len(w.PowerUps()) != 1 {
		t.Fatalf("power-ups not replaced: %+v", w.PowerUps())
	}

	w.ApplyGameState(nil, nil)
	if len(w.Enemies()) != 0 {
		t.Fatal("empty snapshot did not clear enemies")
	}
}

func TestProjectileDedupeByOwner(t *testing.T) {
	w := newTestWorld()
	w.AddOwnProjectile(domain.Projectile{X: 1})

	// Echo of the local shot comes back with our owner id.
	w.ApplyProjectile("me", domain.Projectile{X: 1})
	if n := len(w.Projectiles()); n != 1 {
		t.Fatalf("own echo duplicated projectile: %d", n)
	}

	w.ApplyProjectile("other", domain.Projectile{X: 2})
	ps := w.Projectiles()
	if len(ps) != 2 {
		t.Fatalf("remote projectile dropped: %d", len(ps))
	}
	if ps[1].Owner != "other" {
		t.Fatalf("owner not stamped: %q", ps[1].Owner)
	}
}

func TestPlayerLeftPromotesHost(t *testing.T) {
	w := newTestWorld()
	w.ApplyPlayerLeft("other", "me")
	if _, ok := w.Player("other"); ok {
		t.Fatal("left player still present")
	}
	self, _ := w.Self()
	if !self.IsHost {
		t.Fatal("host flag not applied on handoff")
	}
}

func TestApplyRosterKeepsPredictedSelf(t *testing.T) {
	w := newTestWorld()
	w.PredictLocal(domain.PlayerPatch{X: fptr(123)})

	// Server roster carries a stale position for self but a fresh host flag.
	w.ApplyRoster([]domain.Player{
		{ID: "me", X: 400, IsHost: true},
		{ID: "other", X: 300},
	})
	self, _ := w.Self()
	if self.X != 123 {
		t.Fatalf("roster rolled back prediction: x=%f", self.X)
	}
	if !self.IsHost {
		t.Fatal("server-side host flag not adopted")
	}
}

func TestEnemyDestroyedRemovesLocally(t *testing.T) {
	w := newTestWorld()
	w.ApplyGameState([]domain.Enemy{{ID: "e1"}, {ID: "e2"}}, nil)
	w.ApplyEnemyDestroyed("e1")
	w.ApplyEnemyDestroyed("e1") // duplicate notification is a no-op

	es := w.Enemies()
	if len(es) != 1 || es[0].ID != "e2" {
		t.Fatalf("destroy mishandled: %+v", es)
	}
}

func TestUpdateThrottleCoalesces(t *testing.T) {
	var sent []domain.PlayerPatch
	now := time.Unix(1000, 0)
	// An hour-long window keeps the trailing timer inert so the fake
	// clock alone drives the throttle.
	c := &Client{
		world:    NewWorld(),
		clock:    func() time.Time { return now },
		throttle: time.Hour,
	}
	c.send = func(v any) error {
		msg := v.(struct {
			Type    string             `json:"type"`
			Updates domain.PlayerPatch `json:"updates"`
		})
		sent = append(sent, msg.Updates)
		return nil
	}
	c.world.SetSelf(domain.Player{ID: "me"})

	// First push goes out immediately.
	if err := c.Update(domain.PlayerPatch{X: fptr(1)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("first update not sent: %d", len(sent))
	}

	// Inside the window nothing hits the wire, but prediction applies.
	_ = c.Update(domain.PlayerPatch{X: fptr(2)})
	_ = c.Update(domain.PlayerPatch{Y: fptr(3)})
	if len(sent) != 1 {
		t.Fatalf("throttle leaked: %d sends", len(sent))
	}
	self, _ := c.world.Self()
	if self.X != 2 || self.Y != 3 {
		t.Fatalf("prediction lagged behind input: x=%f y=%f", self.X, self.Y)
	}

	// Past the window the coalesced pending patch goes out, last write
	// per field winning.
	now = now.Add(time.Hour + time.Millisecond)
	_ = c.Update(domain.PlayerPatch{})
	if len(sent) != 2 {
		t.Fatalf("coalesced update not flushed: %d sends", len(sent))
	}
	out := sent[1]
	if out.X == nil || *out.X != 2 || out.Y == nil || *out.Y != 3 {
		t.Fatalf("coalesced patch wrong: %+v", out)
	}
}

// With no further Update calls, a patch merged inside the window still
// reaches the wire via the trailing flush.
func TestUpdateTrailingFlush(t *testing.T) {
	sentCh := make(chan domain.PlayerPatch, 4)
	c := &Client{
		world:    NewWorld(),
		clock:    time.Now,
		throttle: 20 * time.Millisecond,
	}
	c.send = func(v any) error {
		msg := v.(struct {
			Type    string             `json:"type"`
			Updates domain.PlayerPatch `json:"updates"`
		})
		sentCh <- msg.Updates
		return nil
	}
	c.world.SetSelf(domain.Player{ID: "me"})

	_ = c.Update(domain.PlayerPatch{X: fptr(1)})
	select {
	case <-sentCh:
	case <-time.After(time.Second):
		t.Fatal("first update never sent")
	}

	// Input stops here; the coalesced patch must still go out.
	_ = c.Update(domain.PlayerPatch{X: fptr(5), Y: fptr(7)})
	select {
	case out := <-sentCh:
		if out.X == nil || *out.X != 5 || out.Y == nil || *out.Y != 7 {
			t.Fatalf("trailing flush sent wrong patch: %+v", out)
		}
	case <-time.After(time.Second):
		t.Fatal("pending patch never flushed")
	}
}
