package command

import (
	"errors"
	"strings"
	"yamble/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry is the static command table. The same entries back both the published
// catalogue (ListCommands) and dispatch (Get).
type Registry struct {
	commands map[string]port.Command
	order    []string
}

// NewRegistry builds a registry from one declaration list.
func NewRegistry(commands ...port.Command) *Registry {
	r := &Registry{}
	for _, c := range commands {
		r.Register(c)
	}
	return r
}

func (r *Registry) Register(handler port.Command) {
	if r.commands == nil {
		r.commands = make(map[string]port.Command)
	}

	name := normalize(handler.GetCommand())
	if _, ok := r.commands[name]; !ok {
		r.order = append(r.order, name)
	}

	log.Info().Str("handler", name).Msg("adding command handler to registry")
	r.commands[name] = handler
}

func (r *Registry) Get(command string) (port.Command, error) {
	log.Debug().Str("command", command).Msg("fetching command handler from registry")

	if r.commands == nil {
		err := errors.New("can't fetch command, registry not initialized")
		return nil, err
	}

	handler, ok := r.commands[normalize(command)]
	if !ok {
		return nil, errors.New("command not found")
	}

	return handler, nil
}

func (r *Registry) ListCommands() []port.Command {
	list := make([]port.Command, len(r.order))
	for i, name := range r.order {
		list[i] = r.commands[name]
	}

	return list
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}
