package web

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/aop_browser/importer"
)

type Server struct {
	imp *importer.Importer
}

func NewRouter(imp *importer.Importer) *mux.Router {
	s := &Server{imp: imp}

	r := mux.NewRouter()
	r.HandleFunc("/json/pack", s.HandlerAjaxPack)
	r.HandleFunc("/json/pack/{file}", s.HandlerAjaxPackFile)
	r.HandleFunc("/dump/pack/{file}", s.HandlerDumpPackFile)
	r.HandleFunc("/spew/pack/{file}", s.HandlerSpewPackFile)
	r.HandleFunc("/gltf/pack/{file}", s.HandlerGLTFPackFile)
	r.HandleFunc("/image/pack/{file}/{mip}", s.HandlerImagePackFile)
	return r
}

func StartServer(addr string, imp *importer.Importer) error {
	h := handlers.RecoveryHandler()(NewRouter(imp))
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Info().Str("addr", addr).Msg("[web] Starting server")

	return http.ListenAndServe(addr, h)
}
