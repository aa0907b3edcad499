package main

import (
	"flag"

	"bitbucket.org/jayflux/mypodcasts_enclosures/api"
	"bitbucket.org/jayflux/mypodcasts_enclosures/backup"
	"bitbucket.org/jayflux/mypodcasts_enclosures/config"
	"bitbucket.org/jayflux/mypodcasts_enclosures/injest"
	"bitbucket.org/jayflux/mypodcasts_enclosures/injestFromBBC"
	"bitbucket.org/jayflux/mypodcasts_enclosures/injestFromDataset"
	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	"github.com/spf13/viper"
	"gopkg.in/robfig/cron.v2"
)

var build = flag.String("build", "", "injest <url>, bbc, tsv or update")
var dbFlag = flag.String("db", "", "backup, or restore <snapshot>")
var updater = flag.Bool("cron", false, "Keep running and refresh feeds on a schedule")
var apiFlag = flag.Bool("api", false, "Start API")

func main() {
	flag.Parse()

	if err := config.Setup(); err != nil {
		logger.Log.Fatal(err)
	}
	if err := logger.Init(); err != nil {
		logger.Log.Fatalf("error opening log file: %v", err)
	}
	logger.Log.Info("Application started")

	if err := models.InitDB(); err != nil {
		logger.Log.Fatal(err)
	}

	var err error
	switch *build {
	case "injest":
		urls := make(chan string, 1)
		status := make(chan int)
		urls <- flag.Arg(0)
		close(urls)
		go injest.Injest(urls, status)
		<-status
	case "bbc":
		err = injestFromBBC.CrawlBBC()
	case "tsv":
		err = injestFromDataset.CrawlDataset()
	case "update":
		err = injest.UpdateNewPodcasts()
	}
	if err != nil {
		logger.Log.Fatal(err)
	}

	switch *dbFlag {
	case "backup":
		err = backup.PerformBackup()
	case "restore":
		err = backup.Restore(flag.Arg(0))
	}
	if err != nil {
		logger.Log.Fatal(err)
	}

	// Set up cron job to do various tasks, including backing up enclosures
	if *updater {
		// https://godoc.org/gopkg.in/robfig/cron.v2
		c := cron.New()
		schedule(c, viper.GetString("injest.schedule"), "update", injest.UpdatePodcasts)
		schedule(c, "@weekly", "bbc", injestFromBBC.CrawlBBC)
		schedule(c, "@daily", "backup", backup.PerformBackup)
		c.Start()
		if !*apiFlag {
			select {}
		}
	}

	if *apiFlag {
		logger.Log.Fatal(api.API())
	}
}

func schedule(c *cron.Cron, spec, name string, job func() error) {
	_, err := c.AddFunc(spec, func() {
		if err := job(); err != nil {
			logger.Log.WithField("job", name).Error(err)
		}
	})
	if err != nil {
		logger.Log.WithField("job", name).Fatalf("invalid schedule %q: %v", spec, err)
	}
}
