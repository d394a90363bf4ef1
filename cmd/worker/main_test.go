package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func TestCommandNames(t *testing.T) {
	e := &env{}
	for want, cmd := range map[string]*cli.Command{
		"migrate":     migrateCmd(e),
		"snapshot":    snapshotCmd(e),
		"report":      reportCmd(e),
		"export-time": exportCmd(e),
	} {
		assert.Equal(t, want, cmd.Name)
		assert.NotEmpty(t, cmd.Usage, want)
	}
}

func TestMigrateHasDownFlag(t *testing.T) {
	var names []string
	for _, f := range migrateCmd(&env{}).Flags {
		names = append(names, f.Names()...)
	}
	assert.Contains(t, names, "down")
}
