package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	FilesCreated      = "files_created_total"
	FilesDeleted      = "files_deleted_total"
	FilesSwept        = "files_swept_total"
	DownloadsAllowed  = "downloads_allowed_total"
	DownloadsDenied   = "downloads_denied_total"
	DownloadsDeferred = "downloads_deferred_total"
	AppRequests       = "app_requests_total"
)

func NewCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "filevault",
			Name:      "general_counters",
		},
		[]string{"result"})
}
