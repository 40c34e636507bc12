package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/reboot/pkg/export"
	"github.com/chazu/reboot/pkg/snapshot"
	"github.com/spf13/cobra"
)

// RegisterRunCommand returns `run <file>`, which prints both answers for an
// instruction list. "-" reads standard input.
func RegisterRunCommand(app appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run an instruction list and print the lit cell counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res *RunResult
				err error
			)
			if args[0] == "-" {
				res, err = app().RunReader(cmd.Context(), cmd.InOrStdin())
			} else {
				res, err = app().RunPath(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printParts(out, res.Result.Bounded, res.Result.Total)
			fmt.Fprintf(out, "Finished %d instructions in %s (%d fragments)\n",
				res.Program.Len(), res.Elapsed, len(res.Result.Fragments))
			return nil
		},
	}
}

// RegisterEvalCommand returns `eval <script>`, which evaluates a reactor
// script and prints both answers. Evaluation errors are listed one per line.
func RegisterEvalCommand(app appFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <script" + ScriptExt + ">",
		Short: "Evaluate a reactor script and print the lit cell counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sr, err := app().EvalScript(cmd.Context(), string(src))
			if err != nil {
				return err
			}
			if len(sr.Errors) > 0 {
				for _, e := range sr.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], e)
				}
				return &ScriptError{Path: args[0], Errors: sr.Errors}
			}
			for _, w := range sr.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: warning: line %d: %s\n", args[0], w.Line, w.Message)
			}
			printParts(cmd.OutOrStdout(), sr.Run.Result.Bounded, sr.Run.Result.Total)
			return nil
		},
	}
}

// RegisterMeshCommand returns `mesh <file> -o out.glb`.
func RegisterMeshCommand(app appFactory) *cobra.Command {
	var (
		output string
		merge  bool
	)
	cmd := &cobra.Command{
		Use:   "mesh <file>",
		Short: "Tessellate the final lit region and write it as GLB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			res, err := a.RunPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			meshes, err := a.Mesh(res.Result.Fragments, res.Program.Region, merge)
			if err != nil {
				return err
			}
			if err := export.SaveGLB(output, meshes); err != nil {
				return err
			}
			triangles := 0
			for _, m := range meshes {
				triangles += m.TriangleCount()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d meshes (%d triangles) to %s\n", len(meshes), triangles, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "reactor.glb", "GLB output path")
	cmd.Flags().BoolVar(&merge, "merge", false, "emit one mesh instead of one per fragment")
	return cmd
}

// RegisterSnapshotCommand returns `snapshot save|load`.
func RegisterSnapshotCommand(app appFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or load a final reactor state",
	}

	var output string
	save := &cobra.Command{
		Use:   "save <file>",
		Short: "Run a file and save its final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app().RunPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := res.State()
			if err := snapshot.Save(output, state); err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", output)
			return nil
		},
	}
	save.Flags().StringVarP(&output, "output", "o", "state.rbt", "snapshot output path")

	load := &cobra.Command{
		Use:   "load <state.rbt>",
		Short: "Load a saved state and print its lit cell counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}

	cmd.AddCommand(save, load)
	return cmd
}

func printState(w io.Writer, s *snapshot.State) {
	printParts(w, s.Bounded(), s.Total())
	fmt.Fprintf(w, "Fragments: %d\n", len(s.Cuboids))
	fmt.Fprintf(w, "Fingerprint: %016x\n", snapshot.Fingerprint(s.Cuboids))
}
