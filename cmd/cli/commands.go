package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/auth"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/collection"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/config"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/forms"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/gate"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/models"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/session"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/views"
)

var errNotLoggedIn = errors.New("not logged in, run `carmate login` first")

type cli struct {
	apiURL      string
	sessionPath string
	timeout     time.Duration
	bulkSize    int
	pageSize    int
	caps        gate.Capabilities
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	c := &cli{
		apiURL:   cfg.APIBaseURL,
		timeout:  cfg.APITimeout,
		bulkSize: cfg.BulkSize,
		pageSize: cfg.PageSize,
		caps:     gate.DefaultCapabilities,
	}

	root := &cobra.Command{
		Use:          "carmate",
		Short:        "Terminal client for the CarMate admin backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api", c.apiURL, "backend base URL")
	root.PersistentFlags().StringVar(&c.sessionPath, "session-file", "", "session file (default: carmate/session.json in the user config dir)")

	root.AddCommand(c.loginCmd(), c.logoutCmd(), c.whoamiCmd(), c.listCmd(), c.deleteCmd())
	return root
}

func (c *cli) sessionFile() (*session.File, error) {
	if c.sessionPath != "" {
		return &session.File{Path: c.sessionPath}, nil
	}
	return session.DefaultFile()
}

// client builds a backend client whose 401 hook deletes the session file.
func (c *cli) client(file *session.File) *api.Client {
	return api.NewClient(c.apiURL, file,
		api.WithTimeout(c.timeout),
		api.WithBulkSize(c.bulkSize),
		api.WithUnauthorizedHook(func(context.Context) {
			if err := file.Clear(); err != nil {
				slog.Warn("Failed to clear session file", "error", err)
			}
		}),
	)
}

// open loads the session and checks that its role has capability.
func (c *cli) open(capability gate.Capability) (*api.Client, error) {
	file, err := c.sessionFile()
	if err != nil {
		return nil, err
	}
	s, ok, err := file.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotLoggedIn
	}
	if !c.caps.Allows(s.Role, capability) {
		return nil, fmt.Errorf("role %q may not use %s", s.Role, capability)
	}
	return c.client(file), nil
}

// backendError adds the follow-up a terminal user needs to err.
func backendError(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("session expired, run `carmate login` again: %w", err)
	}
	return err
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			file, err := c.sessionFile()
			if err != nil {
				return err
			}
			flow := &auth.Flow{API: c.client(file)}
			form := forms.Login{Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
			s, err := flow.Exchange(cmd.Context(), form)
			if err != nil {
				return err
			}
			if err := file.Save(s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", form.Email, displayRole(s.Role))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func displayRole(r models.Role) string {
	if r == "" {
		return "no dashboard role"
	}
	return r.String()
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := c.sessionFile()
			if err != nil {
				return err
			}
			if err := file.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.open(gate.Dashboard)
			if err != nil {
				return err
			}
			p, err := client.Profile(cmd.Context())
			if err != nil {
				return backendError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> %s\n", p.FirstName, p.LastName, p.Email, p.Role)
			return nil
		},
	}
}

type listOptions struct {
	search, sort, order string
	page, pageSize      int
	status, active      string
}

func (o listOptions) state() collection.State {
	return collection.State{
		Search:    o.search,
		SortField: o.sort,
		SortOrder: collection.ParseOrder(o.order),
		Page:      o.page,
	}
}

func (o listOptions) filters() collection.Filters {
	f := collection.Filters{}
	if o.status != "" {
		f["status"] = o.status
	}
	if o.active != "" {
		f["isActive"] = o.active
	}
	return f
}

var listKinds = []string{"users", "workers", "sellers", "products", "my-products", "categories"}

func (c *cli) listCmd() *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:       "list <" + strings.Join(listKinds, "|") + ">",
		Short:     "List a collection with search, sort and paging",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: listKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.pageSize < 1 {
				opts.pageSize = c.pageSize
			}
			return c.runList(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.search, "search", "q", "", "case-insensitive search on the name or title")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "field to sort by")
	cmd.Flags().StringVar(&opts.order, "order", "asc", "sort order: asc or desc")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "rows per page (default from PAGE_SIZE)")
	cmd.Flags().StringVar(&opts.status, "status", "", "account status filter: verified, pending or blocked")
	cmd.Flags().StringVar(&opts.active, "active", "", "account activity filter: true or false")
	return cmd
}

func (c *cli) runList(ctx context.Context, out io.Writer, kind string, opts listOptions) error {
	accountHeader := []string{"ID", "FIRST NAME", "LAST NAME", "EMAIL", "ACTIVE", "STATUS"}
	accountRow := func(u models.User) []string {
		return []string{strconv.Itoa(u.ID), u.FirstName, u.LastName, u.Email, yesNo(u.IsActive), u.Status}
	}
	productHeader := []string{"ID", "TITLE", "PRICE", "CREATED"}
	productRow := func(p models.Product) []string {
		return []string{strconv.Itoa(p.ID), p.Title, strconv.FormatFloat(p.Price, 'f', 2, 64), p.CreatedAt}
	}

	switch kind {
	case "users", "sellers":
		capability, list := gate.Users, (*api.Client).ListCustomers
		if kind == "sellers" {
			capability, list = gate.Sellers, (*api.Client).ListSellers
		}
		client, err := c.open(capability)
		if err != nil {
			return err
		}
		return printList(ctx, out, views.Users, bind(client, list), opts, accountHeader, accountRow)
	case "workers":
		client, err := c.open(gate.Workers)
		if err != nil {
			return err
		}
		return printList(ctx, out, views.Workers, bind(client, (*api.Client).ListWorkers), opts,
			[]string{"ID", "FIRST NAME", "LAST NAME", "SPECIALIZATION", "LOCATION", "STATUS"},
			func(w models.Worker) []string {
				return []string{strconv.Itoa(w.ID), w.FirstName, w.LastName, w.Specialization, w.Location, w.Status}
			})
	case "products", "my-products":
		capability, list := gate.Products, (*api.Client).ListProducts
		if kind == "my-products" {
			capability, list = gate.MyProducts, (*api.Client).ListMyProducts
		}
		client, err := c.open(capability)
		if err != nil {
			return err
		}
		return printList(ctx, out, views.Products, bind(client, list), opts, productHeader, productRow)
	case "categories":
		client, err := c.open(gate.Categories)
		if err != nil {
			return err
		}
		fetch := func(ctx context.Context, _ collection.Filters) ([]models.Category, error) {
			return client.ListCategories(ctx)
		}
		return printList(ctx, out, views.Categories, fetch, opts, []string{"ID", "NAME"},
			func(cat models.Category) []string { return []string{strconv.Itoa(cat.ID), cat.Name} })
	}
	return fmt.Errorf("unknown collection %q", kind)
}

// bind turns a filtered list method into a pipeline fetch.
func bind[T any](client *api.Client, list func(*api.Client, context.Context, map[string]string) ([]T, error)) collection.FetchFunc[T] {
	return func(ctx context.Context, f collection.Filters) ([]T, error) {
		return list(client, ctx, f)
	}
}

// printList runs the collection pipeline once and prints the requested page
// as a table.
func printList[T any](ctx context.Context, out io.Writer, schema collection.Schema[T], fetch collection.FetchFunc[T], opts listOptions, header []string, row func(T) []string) error {
	st := opts.state()
	if st.SortField != "" && !schema.Sortable(st.SortField) {
		fields := slices.Sorted(maps.Keys(schema.Fields))
		return fmt.Errorf("cannot sort by %q, choose one of %s", st.SortField, strings.Join(fields, ", "))
	}

	p := collection.New(collection.Config[T]{Schema: schema, PageSize: opts.pageSize, Fetch: fetch})
	if err := p.Refresh(ctx, opts.filters()); err != nil {
		return backendError(err)
	}
	page := p.View(st)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, it := range page.Items {
		fmt.Fprintln(tw, strings.Join(row(it), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if page.Empty() {
		fmt.Fprintln(out, "No items found")
	}
	fmt.Fprintf(out, "Page %d of %d (%d items)\n", page.Current, max(page.TotalPages, 1), page.Total)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "delete <users|products> <id>",
		Short:     "Delete an account or a product",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"users", "products"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[1])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid id %q", args[1])
			}

			var (
				capability gate.Capability
				del        func(*api.Client, context.Context, int) error
				noun       string
			)
			switch args[0] {
			case "users":
				capability, del, noun = gate.DeleteUser, (*api.Client).DeleteUser, "account"
			case "products":
				capability, del, noun = gate.DeleteProduct, (*api.Client).DeleteProduct, "product"
			default:
				return fmt.Errorf("cannot delete from %q, choose users or products", args[0])
			}

			client, err := c.open(capability)
			if err != nil {
				return err
			}
			p := collection.New(collection.Config[struct{}]{
				Delete: func(ctx context.Context, id int) error { return del(client, ctx, id) },
			})
			if err := p.Delete(cmd.Context(), id); err != nil {
				return backendError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", noun, id)
			return nil
		},
	}
}
