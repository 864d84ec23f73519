package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adriangreen/fddplan/internal/plan"
	"github.com/adriangreen/fddplan/internal/project"
	"github.com/adriangreen/fddplan/internal/search"
)

// now is replaced in tests.
var now = time.Now

func (a *app) showCommand() *cobra.Command {
	var showIDs bool
	cmd := &cobra.Command{
		Use:   "show <plan>",
		Short: "Print the plan tree with completion and target dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, args[0], false, func(s *project.Session) error {
				s.Read(func(tree *plan.Tree) {
					a.renderTree(cmd.OutOrStdout(), tree, nil, showIDs)
				})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "include node ids")
	return cmd
}

func (a *app) renderTree(w io.Writer, tree *plan.Tree, highlighted map[plan.NodeID]bool, showIDs bool) {
	t := now()
	offset := 0
	if tree.RootNode().Name() == "" {
		offset = 1
	}
	tree.Walk(func(n *plan.Node, depth int) bool {
		if depth < offset {
			return true
		}
		indent := strings.Repeat("  ", depth-offset)
		name := n.Name()
		if n.Kind() == plan.KindFeature && n.Seq() > 0 {
			name = fmt.Sprintf("#%d %s", n.Seq(), name)
		}
		if highlighted[n.ID()] {
			name = a.styles.Highlight.Render(name)
		}

		status := fmt.Sprintf("%3d%%", n.Completion())
		switch {
		case n.Completion() >= 100:
			status = a.styles.Done.Render(status)
		case tree.IsLate(n.ID(), t):
			status = a.styles.Late.Render(status + " late")
		}

		line := fmt.Sprintf("%s%s %s %s", indent, name, a.styles.Muted.Render("["+string(n.Kind())+"]"), status)
		if target, ok := n.TargetDate(); ok {
			line += " " + a.styles.Muted.Render(target.Format(plan.DateLayout))
		}
		if showIDs {
			line += " " + a.styles.Muted.Render(string(n.ID()))
		}
		fmt.Fprintln(w, line)
		return true
	})
}

func (a *app) searchCommand() *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "search <plan> <query>",
		Short: "Rank plan nodes by how well their names match a query",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args[1:], " ")
			return a.withSession(cmd, args[0], false, func(s *project.Session) error {
				if s.Search(query) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No matches for %q\n", query)
					return nil
				}
				matches, _ := s.Matches()
				out := cmd.OutOrStdout()
				s.Read(func(t *plan.Tree) {
					if tree {
						hl := make(map[plan.NodeID]bool, len(matches))
						for _, m := range matches {
							hl[m.Node] = true
						}
						a.renderTree(out, t, hl, false)
						return
					}
					for _, m := range matches {
						a.renderMatch(out, t, m)
					}
				})
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "show matches highlighted in the full tree")
	return cmd
}

func (a *app) renderMatch(w io.Writer, tree *plan.Tree, m search.Match) {
	path := search.Path(tree, m.Node)
	crumbs := ""
	if len(path) > 1 {
		crumbs = a.styles.Muted.Render(strings.Join(path[:len(path)-1], " > ") + " > ")
	}
	fmt.Fprintf(w, "%.2f  %s%s  %s\n", m.Score, crumbs, a.styles.Highlight.Render(m.Text), a.styles.Muted.Render(string(m.Node)))
}

func (a *app) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <plan> <parent-id> <kind> <name>",
		Short: "Add a node under a parent",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := plan.Kind(strings.ToLower(args[2]))
			name := strings.Join(args[3:], " ")
			return a.withSession(cmd, args[0], true, func(s *project.Session) error {
				id, err := s.Add(plan.NodeID(args[1]), kind, name)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func (a *app) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <plan> <id> <name>",
		Short: "Rename a node",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, args[0], true, func(s *project.Session) error {
				return s.Rename(plan.NodeID(args[1]), strings.Join(args[2:], " "))
			})
		},
	}
}

func (a *app) moveCommand() *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "move <plan> <id> <new-parent-id>",
		Short: "Move a node and its subtree under another parent",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, args[0], true, func(s *project.Session) error {
				return s.Move(plan.NodeID(args[1]), plan.NodeID(args[2]), index)
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", -1, "position among the new parent's children (-1 appends)")
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <plan> <id>",
		Short: "Delete a node and its subtree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, args[0], true, func(s *project.Session) error {
				return s.Delete(plan.NodeID(args[1]))
			})
		},
	}
}

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <plan>",
		Short: "Print the plan again whenever the file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.withSession(cmd, args[0], false, func(s *project.Session) error {
				out := cmd.OutOrStdout()
				s.Read(func(t *plan.Tree) { a.renderTree(out, t, nil, false) })
				if err := s.StartWatcher(ctx); err != nil {
					return err
				}
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-s.ReloadEvents():
						fmt.Fprintln(out, a.styles.Title.Render("reloaded "+s.Path()))
						s.Read(func(t *plan.Tree) { a.renderTree(out, t, nil, false) })
					}
				}
			})
		},
	}
}

func (a *app) recentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently opened plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := a.openState(cmd)
			if state == nil {
				return nil
			}
			defer state.Close()
			recent, err := state.Recent(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range recent {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
