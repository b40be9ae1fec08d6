package ghcheck

import (
	"fmt"
	"sync"

	"github.com/versio-release/versio/internal/ghlog"
)

// Run builds a PREnv from the ambient Actions environment and fans the
// given plugins out over it concurrently, returning an error if any
// plugin's check run failed or errored.
func Run(plugins ...Plugin) error {
	log := ghlog.New()

	env, err := NewEnv()
	if err != nil {
		return err
	}
	log.Debugf("environment for %s/%s ready", env.Owner, env.Repo)

	endGroup := log.Group(fmt.Sprintf("running %d checks", len(plugins)))

	res := make(chan error)
	var done sync.WaitGroup
	for _, p := range plugins {
		plugin := p
		log.Debugf("launching %q plugin", plugin.Name())
		done.Add(1)
		go func() {
			defer done.Done()
			res <- plugin.Entrypoint(env)
		}()
	}

	go func() {
		done.Wait()
		close(res)
	}()

	errCount := 0
	for err := range res {
		if err == nil {
			continue
		}
		errCount++
		log.Errorf("%v", err)
	}
	endGroup()

	log.Infof("%d plugins ran", len(plugins))
	if errCount > 0 {
		return fmt.Errorf("%d plugins had errors", errCount)
	}
	return nil
}
