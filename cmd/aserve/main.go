/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sabouaram/aserve/buildinfo"
	aservecfg "github.com/sabouaram/aserve/config"
	"github.com/sabouaram/aserve/manager"
	"github.com/sabouaram/aserve/registry"
	"github.com/sabouaram/aserve/worker"

	_ "github.com/sabouaram/aserve/examples/helloapp"
)

// pidFormatter renders log lines as "asctime - [pid] - level - message",
// the same shape the reference implementation's LOGGING_CONFIG formatter
// uses, so a [pid] field is always present even though the manager and
// every worker share one binary's stderr.
type pidFormatter struct {
	pid int
}

func (f *pidFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	line := fmt.Sprintf("%s - [%d] - %s - %s\n",
		entry.Time.Format("2006-01-02 15:04:05"), f.pid, entry.Level.String(), entry.Message)
	return []byte(line), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:     "aserve",
		Short:   "aserve runs a registered application behind a multi-process HTTP/1.1 server",
		Version: buildinfo.Version(),
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve an application, as the manager or as one spawned worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}

	serveCmd.Flags().String("app", "", "registered application name to serve")
	serveCmd.Flags().String("host", "0.0.0.0", "address to bind")
	serveCmd.Flags().Int("port", 8000, "port to bind")
	serveCmd.Flags().Int("workers", 1, "number of worker processes to spawn")
	serveCmd.Flags().String("log-level", "info", "logrus level: trace|debug|info|warn|error")
	serveCmd.Flags().Bool("worker", false, "internal: run as a spawned worker instead of the manager")
	_ = serveCmd.Flags().MarkHidden("worker")

	_ = v.BindPFlags(serveCmd.Flags())
	v.SetEnvPrefix("ASERVE")
	v.AutomaticEnv()

	root.AddCommand(serveCmd)
	return root
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	asWorker, _ := cmd.Flags().GetBool("worker")

	if asWorker {
		return runWorker()
	}
	return runManager(v)
}

func runManager(v *viper.Viper) error {
	cfg, err := aservecfg.Load(v)
	if err != nil {
		return err
	}

	configureLogging(cfg.LogLevel)

	if _, rerr := registry.Resolve(cfg.App); rerr != nil {
		return fmt.Errorf("cannot resolve application %q: %w (known: %v)", cfg.App, rerr, registry.Names())
	}

	m := manager.New(manager.Config{
		AppRef:  cfg.App,
		Host:    cfg.Host,
		Port:    cfg.Port,
		Workers: cfg.Workers,
	}, logrus.NewEntry(logrus.StandardLogger()))

	return m.Run(context.Background())
}

func runWorker() error {
	appRef := os.Getenv(manager.WorkerEnvApp)
	host := os.Getenv(manager.WorkerEnvHost)
	port, _ := strconv.Atoi(os.Getenv(manager.WorkerEnvPort))

	app, err := registry.Resolve(appRef)
	if err != nil {
		return err
	}

	srv := worker.New(app, host, port, nil, nil)
	return srv.Run(context.Background())
}

func configureLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&pidFormatter{pid: os.Getpid()})
}
