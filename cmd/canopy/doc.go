package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopyreview/canopy/geom"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents within a workspace",
}

var docAddCmd = &cobra.Command{
	Use:   "add <workspace-id> <file-path>",
	Short: "Add a document to the workspace",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocAdd,
}

var docMoveCmd = &cobra.Command{
	Use:   "move <workspace-id> <document-id> <x> <y>",
	Short: "Move a document to a new position",
	Args:  cobra.ExactArgs(4),
	RunE:  runDocMove,
}

var docResizeCmd = &cobra.Command{
	Use:   "resize <workspace-id> <document-id> <width> <height>",
	Short: "Resize a document",
	Args:  cobra.ExactArgs(4),
	RunE:  runDocResize,
}

var docActivateCmd = &cobra.Command{
	Use:   "activate <workspace-id> <document-id>",
	Short: "Activate a document and bring it to the front",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocActivate,
}

var docRemoveCmd = &cobra.Command{
	Use:   "remove <workspace-id> <document-id>",
	Short: "Remove a document from the workspace",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocRemove,
}

var docRemoveAllCmd = &cobra.Command{
	Use:   "remove-all <workspace-id>",
	Short: "Remove every document from the workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocRemoveAll,
}

var docListCmd = &cobra.Command{
	Use:   "list <workspace-id>",
	Short: "List documents in the workspace",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocList,
}

var docListJSON bool

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.AddCommand(docAddCmd, docMoveCmd, docResizeCmd, docActivateCmd, docRemoveCmd, docRemoveAllCmd, docListCmd)

	docListCmd.Flags().BoolVar(&docListJSON, "json", false, "Output as JSON")
}

func runDocAdd(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	doc, err := session.AddDocument(cmd.Context(), args[1])
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	fmt.Println(doc.ID)
	return nil
}

func runDocMove(cmd *cobra.Command, args []string) error {
	x, err := parseDimension(args[2], "x")
	if err != nil {
		return err
	}
	y, err := parseDimension(args[3], "y")
	if err != nil {
		return err
	}

	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	if err := session.MoveDocument(cmd.Context(), args[1], geom.Point{X: x, Y: y}); err != nil {
		return fmt.Errorf("move document: %w", err)
	}

	return printSnapshot(session.Snapshot(), false)
}

func runDocResize(cmd *cobra.Command, args []string) error {
	width, err := parseDimension(args[2], "width")
	if err != nil {
		return err
	}
	height, err := parseDimension(args[3], "height")
	if err != nil {
		return err
	}

	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	if err := session.ResizeDocument(cmd.Context(), args[1], geom.Size{Width: width, Height: height}); err != nil {
		return fmt.Errorf("resize document: %w", err)
	}

	return printSnapshot(session.Snapshot(), false)
}

func runDocActivate(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	if err := session.ActivateDocument(cmd.Context(), args[1]); err != nil {
		return fmt.Errorf("activate document: %w", err)
	}

	return printSnapshot(session.Snapshot(), false)
}

func runDocRemove(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	if err := session.RemoveDocument(cmd.Context(), args[1]); err != nil {
		return fmt.Errorf("remove document: %w", err)
	}
	return nil
}

func runDocRemoveAll(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	if err := session.RemoveAllDocuments(cmd.Context()); err != nil {
		return fmt.Errorf("remove documents: %w", err)
	}
	return nil
}

func runDocList(cmd *cobra.Command, args []string) error {
	session, closeFn, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	return printSnapshot(session.Snapshot(), docListJSON)
}
