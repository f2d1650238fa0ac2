package cli

import "github.com/ardnew/rts/cli/cmd"

var (
	ErrDefine     = cmd.NewError("define")
	ErrRuntimeDir = cmd.NewError("create runtime directory")
)
