package main

import (
	"fmt"
	"log/slog"
	"maps"
	"os"

	"github.com/jpalmerr/switchboard"
)

// cart owns the shopping cart. It changes the shared state but knows
// nothing about who is watching.
type cart struct {
	store *switchboard.Store
}

func (c *cart) add(item string) {
	_, err := c.store.Update(switchboard.UpdateFunc(func(s switchboard.State) switchboard.State {
		items, _ := s["items"].([]string)
		next := maps.Clone(s)
		next["items"] = append(append([]string(nil), items...), item)
		return next
	}))
	if err != nil {
		slog.Error("failed to add item", "item", item, "error", err)
	}
}

// badge renders the item count. It only observes the store.
type badge struct {
	disconnect switchboard.Disconnect
}

func newBadge(store *switchboard.Store) (*badge, error) {
	disconnect, err := store.Connect(switchboard.DefaultGroup, switchboard.ChangedChannel,
		switchboard.StateListener(func(next, prev switchboard.State) {
			items, _ := next["items"].([]string)
			fmt.Printf("badge: %d item(s)\n", len(items))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &badge{disconnect: disconnect}, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// one store, shared by injection
	store, err := switchboard.NewStore(
		switchboard.State{"items": []string{}},
		switchboard.GroupNames{"checkout"},
		switchboard.WithStoreLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}

	c := &cart{store: store}
	b, err := newBadge(store)
	if err != nil {
		slog.Error("failed to create badge", "error", err)
		os.Exit(1)
	}

	// a group is also a plain event namespace
	checkout, _ := store.Group("checkout")
	_, _, _ = checkout.Get("paid").ConnectFunc(func(args ...any) error {
		fmt.Println("checkout: paid", args[0])
		return nil
	})
	_, _, _ = checkout.Get("paid").ConnectFunc(func(args ...any) error {
		return fmt.Errorf("receipt printer offline")
	})

	c.add("coffee")
	c.add("bagel")
	fmt.Println("items:", store.Select(switchboard.Path("items")))

	// the failing listener is logged; Emit itself does not fail
	checkout.Get("paid").Emit(4.5)

	b.disconnect()
	store.Reset(switchboard.State{"items": []string{}})
	c.add("tea") // badge no longer prints
	fmt.Println("items:", store.Select(switchboard.Keys{"items"}))
}
