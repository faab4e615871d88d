package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	konghcl "github.com/alecthomas/kong-hcl/v2"
	"github.com/apache/arrow-go/v18/arrow/csv"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/conf"
	"github.com/squareup/connectoragent/dispatcher"
	"github.com/squareup/connectoragent/errors"
	plog "github.com/squareup/connectoragent/log"
	"github.com/squareup/connectoragent/metrics"
	"github.com/squareup/connectoragent/parser"
	"github.com/squareup/connectoragent/partition"
	"github.com/squareup/connectoragent/sources/sqldb"
	"github.com/squareup/connectoragent/writers/arrowwriter"
)

type arguments struct {
	Config kong.ConfigFlag `help:"Path to config file" type:"existingfile"`
	Log    plog.Config     `help:"Configuration for the logger" embed:"" prefix:"log-"`
	Agent  conf.Config     `help:"Dispatch configuration" embed:"" prefix:""`
}

func parseArgs(args []string) (*arguments, error) {
	cfg := &arguments{}
	parser, err := kong.New(cfg, kong.Configuration(konghcl.Loader), kong.Name("connector-agent"),
		kong.Description("Runs SQL queries in parallel and writes the merged result as CSV"))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, errors.NewInvalidConfigurationError(err.Error())
	}
	return cfg, nil
}

func run(args []string, out io.Writer) error {
	defer common.PanicHandler()
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}
	if err := cfg.Log.Configure(); err != nil {
		return err
	}
	if err := cfg.Agent.Validate(); err != nil {
		return err
	}
	schema, err := parser.ParseSchema(cfg.Agent.Schema)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server *metrics.Server
	if cfg.Agent.MetricsAddr != "" {
		server = metrics.NewServer(cfg.Agent.MetricsAddr)
		if err := server.Start(); err != nil {
			return err
		}
		defer func() {
			if err := server.Stop(); err != nil {
				log.Warnf("failed to stop metrics server %v", err)
			}
		}()
	}

	builder := sqldb.NewSourceBuilder(cfg.Agent.SQLDriver(), cfg.Agent.DSN)
	defer common.InvokeCloser(builder)

	queries := cfg.Agent.DirectQueries()
	if cfg.Agent.PartitionQuery != "" {
		queries, err = partition.Queries(ctx, builder, cfg.Agent.PartitionConfig())
		if err != nil {
			return err
		}
		log.Debugf("partitioned query into %d queries", len(queries))
	}

	writer := arrowwriter.NewWriter(schema.Names)
	defer writer.Release()
	d := dispatcher.NewDispatcher(builder, writer, schema.Types, queries, dispatcher.WithWorkers(cfg.Agent.Workers))
	if server != nil {
		server.SetReady(true)
	}
	_, err = d.RunChecked(ctx)
	if server != nil {
		server.SetReady(false)
	}
	if err != nil {
		return err
	}
	return writeCSV(writer, out)
}

func writeCSV(writer *arrowwriter.Writer, out io.Writer) error {
	rec, err := writer.Record()
	if err != nil {
		return err
	}
	w := csv.NewWriter(out, rec.Schema(), csv.WithHeader(true))
	if err := w.Write(rec); err != nil {
		return errors.WithStack(err)
	}
	w.Flush()
	return errors.WithStack(w.Error())
}
