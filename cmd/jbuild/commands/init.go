package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/jbuild/internal/config"
)

// InitCmd writes a starter build file.
type InitCmd struct {
	Force bool `help:"Overwrite an existing build file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(root.Config, i.Force)
}

// RunInit writes the starter build file to path.
func RunInit(path string, force bool) error {
	if err := config.Init(path, force); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s; set library.version and list subprojects under include.\n", path)
	return nil
}
