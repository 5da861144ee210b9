package commands

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/internal/batchspec"
	"github.com/livyctl/livyctl/internal/plugin"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// submitFlags holds the values bound to the submit flags.
type submitFlags struct {
	className      string
	name           string
	proxyUser      string
	queue          string
	driverMemory   string
	driverCores    int
	executorMemory string
	executorCores  int
	numExecutors   int
	jars           []string
	pyFiles        []string
	files          []string
	archives       []string
	conf           []string
	spec           string
	preSubmit      []string
	metricsFile    string
}

type submitOptions struct {
	// PreSubmit names the hooks to run, in order.
	PreSubmit   []string
	WatchLog    bool
	MetricsFile string
}

// NewSubmitCmd creates the submit command
func NewSubmitCmd() *cobra.Command {
	var f submitFlags

	cmd := &cobra.Command{
		Use:   "submit [script] [args...]",
		Short: "Submit a batch to the Livy server",
		Long: `Submit a batch to the Livy server and watch its log until it is finished.

Values missing on the command line are taken from the --spec file, then from
the submit section of the config file. Flags after the script are passed to it.

Example:
  livy submit main.py --date 2021-05-01
  livy submit --jars 'libs/*.jar' --num-executors 8 app.py
  livy submit --spec livy.toml --no-watch-log
  livy submit --pre-submit upload_s3 job.py`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			client, cfg, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}

			req, err := f.request(args)
			if err != nil {
				return ui.NewValidationError(err)
			}

			var spec *batchspec.Spec
			if f.spec != "" {
				if spec, err = batchspec.Load(f.spec); err != nil {
					return ui.NewFileSystemError(err)
				}
			}
			if err := prepareRequest(req, spec, cfg.Submit); err != nil {
				return ui.NewValidationError(err)
			}

			opts := submitOptions{
				PreSubmit:   cfg.Submit.PreSubmit,
				WatchLog:    cfg.Submit.WatchLog,
				MetricsFile: f.metricsFile,
			}
			if spec != nil && len(spec.PreSubmit) > 0 {
				opts.PreSubmit = spec.PreSubmit
			}
			if cmd.Flags().Changed("pre-submit") {
				opts.PreSubmit = f.preSubmit
			}
			if on, _ := cmd.Flags().GetBool("watch-log"); on {
				opts.WatchLog = true
			}
			if off, _ := cmd.Flags().GetBool("no-watch-log"); off {
				opts.WatchLog = false
			}

			return runSubmit(cmd.Context(), client, cfg, req, opts)
		},
	}

	// Everything after the script belongs to the script
	cmd.Flags().SetInterspersed(false)

	flags := cmd.Flags()
	flags.StringVar(&f.className, "class-name", "", "Application Java/Spark main class")
	flags.StringVar(&f.name, "name", "", "Name of this batch")
	flags.StringVar(&f.proxyUser, "proxy-user", "", "User to impersonate when running the batch")
	flags.StringVar(&f.queue, "queue", "", "Name of the YARN queue to submit to")
	flags.StringVar(&f.driverMemory, "driver-memory", "", "Amount of memory to use for the driver process, e.g. 4g")
	flags.IntVar(&f.driverCores, "driver-cores", 0, "Number of cores to use for the driver process")
	flags.StringVar(&f.executorMemory, "executor-memory", "", "Amount of memory to use per executor process, e.g. 8g")
	flags.IntVar(&f.executorCores, "executor-cores", 0, "Number of cores to use for each executor")
	flags.IntVar(&f.numExecutors, "num-executors", 0, "Number of executors to launch")
	flags.StringSliceVar(&f.jars, "jars", nil, "Java dependencies, globs are expanded")
	flags.StringSliceVar(&f.pyFiles, "py-files", nil, "Python dependencies, globs are expanded")
	flags.StringSliceVar(&f.files, "files", nil, "Files to be placed in the working directory, globs are expanded")
	flags.StringSliceVar(&f.archives, "archives", nil, "Archives to be extracted into the working directory, globs are expanded")
	flags.StringArrayVar(&f.conf, "conf", nil, "Spark configuration property as KEY=VALUE, may be repeated")
	flags.StringVar(&f.spec, "spec", "", "Read batch values from this livy.toml")
	flags.StringSliceVar(&f.preSubmit, "pre-submit", nil, fmt.Sprintf("Pre-submit hooks to run, available: %s", strings.Join(plugin.Names(), ", ")))
	flags.Bool("watch-log", false, "Watch for logs until the batch is finished")
	flags.Bool("no-watch-log", false, "Only submit the batch and quit")
	cmd.MarkFlagsMutuallyExclusive("watch-log", "no-watch-log")
	flags.StringVar(&f.metricsFile, "metrics-textfile", "", "Write reader metrics to PATH in Prometheus text format")

	return cmd
}

// request builds the batch request from flags and positional arguments.
func (f *submitFlags) request(args []string) (*api.CreateBatchRequest, error) {
	req := &api.CreateBatchRequest{
		ClassName:      f.className,
		Name:           f.name,
		ProxyUser:      f.proxyUser,
		Queue:          f.queue,
		DriverMemory:   f.driverMemory,
		DriverCores:    f.driverCores,
		ExecutorMemory: f.executorMemory,
		ExecutorCores:  f.executorCores,
		NumExecutors:   f.numExecutors,
		Jars:           f.jars,
		PyFiles:        f.pyFiles,
		Files:          f.files,
		Archives:       f.archives,
	}
	if len(args) > 0 {
		req.File = args[0]
		req.Args = args[1:]
	}

	if len(f.conf) > 0 {
		req.Conf = make(map[string]string, len(f.conf))
		for _, kv := range f.conf {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return nil, fmt.Errorf("invalid --conf %q, expect KEY=VALUE", kv)
			}
			req.Conf[strings.TrimSpace(k)] = v
		}
	}
	return req, nil
}

// prepareRequest fills req from the batch definition and config defaults, expands
// glob patterns and validates the result.
func prepareRequest(req *api.CreateBatchRequest, spec *batchspec.Spec, defaults config.SubmitConfig) error {
	if spec != nil {
		spec.Apply(req)
	}
	applySubmitDefaults(req, defaults)

	var err error
	for _, list := range []*[]string{&req.Jars, &req.PyFiles, &req.Files, &req.Archives} {
		if *list, err = batchspec.ExpandPaths(*list); err != nil {
			return err
		}
	}

	if strings.TrimSpace(req.File) == "" {
		return fmt.Errorf("script is required, pass it as the first argument or set it in --spec")
	}
	return req.Validate()
}

func applySubmitDefaults(req *api.CreateBatchRequest, d config.SubmitConfig) {
	defaults := batchspec.Spec{
		ProxyUser:      d.ProxyUser,
		Queue:          d.Queue,
		DriverMemory:   d.DriverMemory,
		DriverCores:    d.DriverCores,
		ExecutorMemory: d.ExecutorMemory,
		ExecutorCores:  d.ExecutorCores,
		NumExecutors:   d.NumExecutors,
		Jars:           d.Jars,
		PyFiles:        d.PyFiles,
		Files:          d.Files,
		Archives:       d.Archives,
		Conf:           maps.Clone(d.Conf),
	}
	defaults.Apply(req)
}

func runSubmit(ctx context.Context, client api.Client, cfg *config.Config, req *api.CreateBatchRequest, opts submitOptions) error {
	console := commandLogger("livy.submit")

	if len(opts.PreSubmit) > 0 {
		console.Info("Running pre-submit hooks", "hooks", strings.Join(opts.PreSubmit, ","))
		if err := plugin.RunPreSubmit(ctx, cfg, opts.PreSubmit, req); err != nil {
			if ctx.Err() != nil {
				return ui.NewUserCancelledError()
			}
			return ui.NewValidationError(fmt.Errorf("pre-submit hook failed: %w", err))
		}
	}

	console.Info("Submitting batch", "url", cfg.Root.APIURL, "file", req.File)
	batch, err := client.CreateBatch(ctx, *req)
	if err != nil {
		return requestFailed(ctx, console, "Failed to submit batch", err)
	}
	console.Info("Batch submitted", "batch_id", batch.ID, "state", batch.State)

	if !opts.WatchLog {
		console.Info("Skip watching the log", "batch_id", batch.ID)
		return nil
	}

	reg := prometheus.NewRegistry()
	defer writeMetrics(console, opts.MetricsFile, reg)

	if err := watchLog(ctx, client, cfg, batch.ID, true, cfg.ReadLog.Interval, reg); err != nil {
		return err
	}
	return reportFinalState(ctx, client, console, batch.ID)
}
