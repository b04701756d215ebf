// Command report prints the salary insights for one set of filters, the same
// views the engine serves over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"jobpay-engine/internal/aggregate"
	"jobpay-engine/internal/cache"
	"jobpay-engine/internal/config"
	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/export"
	"jobpay-engine/internal/filter"
	"jobpay-engine/internal/insights"
	"jobpay-engine/internal/location"
	"jobpay-engine/internal/logger"
	"jobpay-engine/internal/normalize"
	"jobpay-engine/internal/source"
)

// periodList collects repeated -pay-period flags.
type periodList []string

func (p *periodList) String() string { return strings.Join(*p, ",") }

func (p *periodList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*p = append(*p, part)
		}
	}
	return nil
}

type options struct {
	configPath string
	city       string
	periods    periodList
	keyword    string
	min, max   float64
	csvPath    string
	top        int
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "config.yml", "config file")
	flag.StringVar(&o.city, "city", filter.AllCities, "canonical city")
	flag.Var(&o.periods, "pay-period", "pay period label (repeatable); default all")
	flag.StringVar(&o.keyword, "keyword", "", "title substring, case-insensitive")
	flag.Float64Var(&o.min, "min", -1, "lowest hourly rate; default the dataset minimum")
	flag.Float64Var(&o.max, "max", -1, "highest hourly rate; default the dataset maximum")
	flag.StringVar(&o.csvPath, "csv", "", "also write the filtered postings to this CSV file")
	flag.IntVar(&o.top, "top", 0, "number of companies to rank; default from config")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}

	cfg, err := config.Load(o.configPath)
	if err == nil {
		err = config.OverlayCityAliases(&cfg, cfg.Cities.AliasesFile)
	}
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init("warn", cfg.App.PrettyLogs)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, o options, out io.Writer) error {
	src, err := source.New(cfg.Source, source.Options{DataDir: cfg.App.DataDir})
	if err != nil {
		return err
	}
	defer source.Close(src)

	norm := normalize.New(location.NewCanonicalizer(cfg.Cities.Aliases), cfg.Normalize.Workers)
	svc := insights.NewService(src, cache.New(cache.Config{}), norm)

	ds, err := svc.Load(ctx)
	if err != nil {
		return err
	}

	c, err := criteriaFrom(ds, o)
	if err != nil {
		return err
	}
	view := ds.View(c)

	top := o.top
	if top <= 0 {
		top = cfg.Analysis.TopCompanies
	}
	report(out, ds, view, cfg, top)

	if o.csvPath != "" {
		f, err := os.Create(o.csvPath)
		if err != nil {
			return err
		}
		if err := export.WriteCSV(f, view.Records); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nwrote %d rows to %s\n", len(view.Records), o.csvPath)
	}
	return nil
}

func criteriaFrom(ds insights.Dataset, o options) (filter.Criteria, error) {
	c := ds.Defaults()
	if o.city != "" {
		c.City = o.city
	}
	if len(o.periods) > 0 {
		c.PayPeriods = make([]domain.PayPeriod, 0, len(o.periods))
		for _, s := range o.periods {
			p, ok := domain.ParsePayPeriod(s)
			if !ok {
				return c, fmt.Errorf("unknown pay period %q", s)
			}
			c.PayPeriods = append(c.PayPeriods, p)
		}
	}
	c.Keyword = o.keyword
	if o.min >= 0 {
		c.MinRate = o.min
	}
	if o.max >= 0 {
		c.MaxRate = o.max
	}
	return c, nil
}

func report(out io.Writer, ds insights.Dataset, v insights.View, cfg config.Config, top int) {
	fmt.Fprintf(out, "source %s: %d postings, %d with a usable salary, %d dropped\n",
		ds.Source, ds.RawCount, len(ds.Records), ds.Dropped())

	if v.Empty {
		fmt.Fprintln(out, "\nno postings match the filters")
		return
	}

	s := aggregate.Summarize(v.Records, cfg.Analysis.Outliers)
	fmt.Fprintf(out, "\nmatching postings  %d\n", s.Count)
	fmt.Fprintf(out, "mean hourly rate   $%.2f\n", s.MeanRate)
	fmt.Fprintf(out, "median hourly rate $%.2f\n", s.MedianRate)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "\nKEYWORD\tPOSTINGS\tMEAN RATE")
	for _, k := range aggregate.GroupByKeywords(v.Records, cfg.Analysis.Keywords) {
		fmt.Fprintf(tw, "%s\t%d\t$%.2f\n", k.Keyword, k.Count, k.MeanRate)
	}

	fmt.Fprintln(tw, "\nCOMPANY\tPOSTINGS\t")
	for _, c := range aggregate.TopCompanies(v.Records, top).Companies {
		fmt.Fprintf(tw, "%s\t%d\t\n", c.Company, c.Count)
	}

	fmt.Fprintln(tw, "\nCITY\tPAY PERIOD\tPOSTINGS\tMEDIAN RATE")
	for _, c := range aggregate.GroupByCity(v.Records) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t$%.2f\n", c.City, c.PayPeriod, c.Count, c.MedianRate)
	}

	fmt.Fprintln(tw, "\nTOP PAYING\tCOMPANY\tCITY\tRATE")
	for _, r := range s.Outliers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t$%.2f\n", r.TitleText(), r.Company, r.City, r.HourlyRate)
	}
	_ = tw.Flush()
}
