package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	exitSuccess    = "success"
	exitFailure    = "failure"
	exitCancelled  = "cancelled"
	exitSpawnError = "spawn_error"
)

var (
	startTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdl_process_start_total",
		Help: "Total number of yt-dlp process starts",
	}, []string{"result"})

	exitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdl_process_exit_total",
		Help: "Total number of finished download jobs",
	}, []string{"reason"})

	progressLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytdl_progress_lines_total",
		Help: "Total number of parsed progress lines",
	})

	runningJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytdl_running_jobs",
		Help: "Number of download jobs with an active pump loop",
	})
)
