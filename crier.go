// Package crier turns raw commit history into release intelligence: typed
// commit records, semantic version suggestions, change-impact risk scores,
// and a searchable index over the parsed commits.
//
// Related packages: config, commit, risk, stats, search, runner, model, vcs,
// vcs/gitcli
package crier

import "github.com/crierhq/crier/config"

// Config holds most of the configuration variables for crier. This struct is
// intended for command-line use, so not all of its attributes are applicable
// to every operation.
//
// See "go doc github.com/crierhq/crier/config Config" for more information.
type Config = config.Config
