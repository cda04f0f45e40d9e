// Package git loads rule files from a Git repository.
//
// A Source clones the configured repository once, loads every rule file
// under the configured path, and, when watched, polls the remote on an
// interval. A poll that moves HEAD and touches a rule file produces a
// rules.EventChanged; failed pulls produce rules.EventError and polling
// continues.
//
// Basic usage:
//
//	src, err := git.NewSource(&cfg.Rules.Git, logger)
//	if err != nil {
//	    return err
//	}
//	rs, err := src.Load(ctx)
package git
