package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/layout"
	"github.com/canopyreview/canopy/workspace"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage review workspaces",
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceCreate,
}

var workspaceOpenCmd = &cobra.Command{
	Use:   "open <workspace-id>",
	Short: "Open a workspace and show its document layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceOpen,
}

var workspaceSaveCmd = &cobra.Command{
	Use:   "save <workspace-id>",
	Short: "Persist workspace state to the service",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkspaceSave,
}

var workspaceResizeCmd = &cobra.Command{
	Use:   "resize <workspace-id> <width> <height>",
	Short: "Resize the workspace canvas and reflow documents",
	Args:  cobra.ExactArgs(3),
	RunE:  runWorkspaceResize,
}

var workspaceModeCmd = &cobra.Command{
	Use:   "mode <workspace-id> <stacked|grid|freeform>",
	Short: "Switch the workspace layout strategy",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorkspaceMode,
}

var (
	createMode   string
	createWidth  float64
	createHeight float64
	openJSON     bool
)

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceCreateCmd, workspaceOpenCmd, workspaceSaveCmd, workspaceResizeCmd, workspaceModeCmd)

	workspaceCreateCmd.Flags().StringVar(&createMode, "mode", "", "Initial layout mode (default from config, else stacked)")
	workspaceCreateCmd.Flags().Float64Var(&createWidth, "width", 0, "Canvas width (default from config)")
	workspaceCreateCmd.Flags().Float64Var(&createHeight, "height", 0, "Canvas height (default from config)")
	workspaceOpenCmd.Flags().BoolVar(&openJSON, "json", false, "Output as JSON")
}

func runWorkspaceCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode := layout.Mode(createMode)
	if createMode == "" {
		mode, err = cfg.Workspace.LayoutMode("")
		if err != nil {
			return err
		}
	}

	size := geom.Size{Width: createWidth, Height: createHeight}
	if size.IsZero() {
		size = cfg.Workspace.CanvasSize(workspace.DefaultCanvasSize)
	}

	client, err := dialService(cmd, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	logger := newLogger()
	session, err := workspace.Create(cmd.Context(), args[0], mode, size, workspace.Options{
		Service: client,
		Logger:  &logger,
	})
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	fmt.Println(session.WorkspaceID())
	return nil
}

func runWorkspaceOpen(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	return printSnapshot(session.Snapshot(), openJSON)
}

func runWorkspaceSave(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	return session.SaveState(cmd.Context())
}

func runWorkspaceResize(cmd *cobra.Command, args []string) error {
	width, err := parseDimension(args[1], "width")
	if err != nil {
		return err
	}
	height, err := parseDimension(args[2], "height")
	if err != nil {
		return err
	}

	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	if err := session.UpdateCanvasSize(cmd.Context(), geom.Size{Width: width, Height: height}); err != nil {
		return fmt.Errorf("resize workspace: %w", err)
	}

	return printSnapshot(session.Snapshot(), false)
}

func runWorkspaceMode(cmd *cobra.Command, args []string) error {
	mode := layout.Mode(args[1])
	if !mode.IsValid() {
		return fmt.Errorf("invalid layout mode %q", args[1])
	}

	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	if err := session.SwitchMode(cmd.Context(), mode); err != nil {
		return fmt.Errorf("switch mode: %w", err)
	}

	return printSnapshot(session.Snapshot(), false)
}

func parseDimension(value, name string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return parsed, nil
}

func printSnapshot(snap workspace.Snapshot, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Printf("%s  %s  mode=%s  canvas=%.0fx%.0f\n",
		snap.Workspace.ID, snap.Workspace.Name, snap.Workspace.Mode,
		snap.Workspace.Size.Width, snap.Workspace.Size.Height)

	if len(snap.Documents) == 0 {
		fmt.Println("No documents in this workspace.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPOSITION\tSIZE\tZ\tSTATE\tFLAGS")
	for _, doc := range snap.Documents {
		flags := ""
		if doc.Active {
			flags += "active"
		}
		if !doc.Visible {
			if flags != "" {
				flags += ","
			}
			flags += "hidden"
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f,%.0f\t%.0fx%.0f\t%d\t%s\t%s\n",
			doc.ID, doc.Title, doc.Position.X, doc.Position.Y,
			doc.Dimensions.Width, doc.Dimensions.Height, doc.ZIndex, doc.State, flags)
	}
	return w.Flush()
}
