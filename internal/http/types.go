package http

import (
	"net/http"

	"github.com/mauv0809/courtside/internal/app"
	"github.com/mauv0809/courtside/internal/config"
	"github.com/mauv0809/courtside/internal/processor"
)

type Server struct {
	App            *app.App
	MetricsHandler http.Handler
	Cfg            config.Config
	Processor      *processor.Processor
	Router         *http.ServeMux
}
