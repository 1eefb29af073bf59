//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/hayeah/focustree/internal/state"
	"github.com/hayeah/focustree/tree"
)

func BuildApp(workspace string, args Args) (*App, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideStore,
		ProvideFs,
		ProvideWatcher,
		ProvideReveal,
		ProvideProvider,
		ProvideOut,
		wire.Bind(new(tree.Store), new(*state.Store)),
		wire.Struct(new(App), "Workspace", "Config", "Logger", "Store", "Provider", "Reveal", "Out"),
	)
	return nil, nil, nil
}
