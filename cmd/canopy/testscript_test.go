package main

import (
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/canopyreview/canopy/internal/testsupport"
)

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			return testsupport.SetupScriptEnv(t, env)
		},
	})
}
