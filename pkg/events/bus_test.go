package events_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settingspage/pkg/events"
)

func TestBusEmit_RunsListenersInOrder(t *testing.T) {
	bus := events.NewBus()
	var calls []string

	for _, name := range []string{"first", "second"} {
		name := name
		if err := bus.Subscribe("saved", events.ListenerFunc(func(_ context.Context, event events.Event) error {
			calls = append(calls, name+":"+event.Name)
			return nil
		})); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	if err := bus.Emit(context.Background(), events.Event{Name: "saved"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	want := []string{"first:saved", "second:saved"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Fatalf("listener calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBusEmit_FillsIdentityAndJoinsErrors(t *testing.T) {
	bus := events.NewBus()
	var seen events.Event
	_ = bus.Subscribe("saved", events.ListenerFunc(func(_ context.Context, event events.Event) error {
		seen = event
		return errors.New("boom")
	}))
	_ = bus.Subscribe("saved", events.ListenerFunc(func(context.Context, events.Event) error {
		return errors.New("bang")
	}))

	err := bus.Emit(context.Background(), events.Event{Name: " saved "})
	if err == nil {
		t.Fatalf("expected joined listener errors")
	}
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "bang") {
		t.Fatalf("expected both listener errors, got %v", err)
	}
	if seen.ID == "" || seen.OccurredAt.IsZero() {
		t.Fatalf("expected event id and timestamp to be filled, got %+v", seen)
	}
}

func TestBusEmit_NoListeners(t *testing.T) {
	bus := events.NewBus()
	if err := bus.Emit(context.Background(), events.Event{Name: "nobody"}); err != nil {
		t.Fatalf("expected nil error without listeners, got %v", err)
	}
	if err := bus.Emit(context.Background(), events.Event{}); err == nil {
		t.Fatalf("expected error for unnamed event")
	}
}

func TestUpdateOptionsName(t *testing.T) {
	cases := map[string]struct {
		prefix, tab, section string
		want                 string
	}{
		"default prefix": {"", "settings-page-slug", "license", "woocommerce_update_options_settings-page-slug_license"},
		"custom prefix":  {"acme_saved", "tab", "general", "acme_saved_tab_general"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := events.UpdateOptionsName(tc.prefix, tc.tab, tc.section); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
