package catalog

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/asteroid-belt/idapm/internal/models"
)

// Lifecycle events.
const (
	EventInstallSucceeded = "INSTALL_SUCCEEDED"
	EventInstallFailed    = "INSTALL_FAILED"
	EventUninstall        = "UNINSTALL"
	EventRetry            = "RETRY"
)

// Machine state names, equal to the models.Status values.
const (
	stateNotInstalled = "not_installed"
	stateInstalled    = "installed"
	stateFailed       = "failed"
)

// transitionContext is carried by the lifecycle machine.
type transitionContext struct {
	PluginID string
}

// advance runs event against a lifecycle machine started in from and returns
// the resulting status. An event the machine does not accept in from is
// ErrIllegalTransition.
func advance(id string, from models.Status, event statekit.EventType) (models.Status, error) {
	builder := statekit.NewMachine[transitionContext]("plugin-lifecycle")
	switch from {
	case models.StatusNotInstalled:
		builder = builder.WithInitial(stateNotInstalled)
	case models.StatusInstalled:
		builder = builder.WithInitial(stateInstalled)
	case models.StatusFailed:
		builder = builder.WithInitial(stateFailed)
	default:
		return from, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, from)
	}

	machine, err := builder.
		WithContext(transitionContext{PluginID: id}).
		State(stateNotInstalled).
		On(EventInstallSucceeded).Target(stateInstalled).
		On(EventInstallFailed).Target(stateFailed).Done().
		State(stateInstalled).
		On(EventUninstall).Target(stateNotInstalled).
		On(EventInstallFailed).Target(stateFailed).Done().
		State(stateFailed).
		On(EventUninstall).Target(stateNotInstalled).
		On(EventRetry).Target(stateNotInstalled).Done().
		Build()
	if err != nil {
		return from, fmt.Errorf("build lifecycle: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	defer interp.Stop()

	interp.Send(statekit.Event{Type: event})
	to := models.Status(interp.State().Value)
	if to == from {
		return from, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, event, from)
	}
	return to, nil
}
