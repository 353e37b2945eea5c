package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lisanmuaddib/blog-agent/pkg/actions"
	"github.com/sirupsen/logrus"
)

// Agent runs a set of registered actions to completion
type Agent struct {
	logger  *logrus.Logger
	actions map[string]actions.Action
	order   []string
	mu      sync.RWMutex
}

type Config struct {
	Logger *logrus.Logger
}

func New(config Config) *Agent {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	return &Agent{
		logger:  config.Logger,
		actions: make(map[string]actions.Action),
	}
}

// RegisterAction adds a new action to the agent
func (a *Agent) RegisterAction(action actions.Action) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := action.Name()
	if _, exists := a.actions[name]; exists {
		return fmt.Errorf("action %s already registered", name)
	}

	a.actions[name] = action
	a.order = append(a.order, name)
	return nil
}

// Run starts all registered actions and waits for them to finish. The first
// action error stops the others and is returned.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.RLock()
	names := append([]string(nil), a.order...)
	a.mu.RUnlock()

	if len(names) == 0 {
		return errors.New("no actions registered")
	}

	a.logger.WithField("actions", names).Info("Starting agent with registered actions")

	errChan := make(chan error, len(names))
	var wg sync.WaitGroup
	for _, name := range names {
		action := a.actions[name]
		wg.Add(1)
		go func(name string, action actions.Action) {
			defer wg.Done()

			a.logger.WithField("action", name).Info("Starting action")
			if err := action.Execute(ctx); err != nil {
				a.logger.WithError(err).WithField("action", name).Error("Action failed")
				errChan <- fmt.Errorf("action %s failed: %w", name, err)
				return
			}
			a.logger.WithField("action", name).Info("Action completed")
		}(name, action)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Context cancelled, stopping all actions")
		a.stopAllActions()
		<-done
		return ctx.Err()
	case err := <-errChan:
		a.stopAllActions()
		<-done
		return err
	case <-done:
		select {
		case err := <-errChan:
			return err
		default:
		}
		a.logger.Info("All actions completed")
		return nil
	}
}

// stopAllActions cleanly stops all registered actions
func (a *Agent) stopAllActions() {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, name := range a.order {
		a.logger.WithField("action", name).Info("Stopping action")
		a.actions[name].Stop()
	}
}
