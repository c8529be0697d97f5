package web

import (
	"bytes"
	"image"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/aop_browser/pack"
	"github.com/mogaika/aop_browser/pack/tx"
	"github.com/mogaika/aop_browser/textureformats"
	"github.com/mogaika/aop_browser/utils"
	"github.com/mogaika/aop_browser/vfs"
	"github.com/mogaika/aop_browser/webutils"
)

type fileView struct {
	Data        interface{}
	Diagnostics []string `json:",omitempty"`
}

func logDiagnostics(file string, diagnostics []error) {
	for _, diag := range diagnostics {
		log.Warn().Str("file", file).Err(diag).Msg("Import problem")
	}
}

// HandlerAjaxPack lists files the browser knows how to open.
func (s *Server) HandlerAjaxPack(w http.ResponseWriter, r *http.Request) {
	if files, err := vfs.ListFiles(s.imp.Directory(), pack.HasHandler); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

// instance loads a file together with what the importer pairs it with.
func (s *Server) instance(file string) (interface{}, []error, error) {
	switch pack.Extension(file) {
	case ".GM":
		scene, err := s.imp.LoadScene(file)
		if err != nil {
			return nil, nil, err
		}
		return scene, scene.Diagnostics, nil
	case ".AN":
		a, err := s.imp.LoadAnimation(file)
		if err != nil {
			return nil, nil, err
		}
		return a, a.Diagnostics, nil
	case ".TX":
		data, err := pack.GetInstanceHandler(s.imp.Directory(), file)
		if err != nil {
			return nil, nil, err
		}
		diagnostics := make([]error, 0)
		if err := data.(*tx.Texture).CheckDimensions(); err != nil {
			diagnostics = append(diagnostics, err)
		}
		return data, diagnostics, nil
	default:
		data, err := pack.GetInstanceHandler(s.imp.Directory(), file)
		return data, nil, err
	}
}

func (s *Server) HandlerAjaxPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, diagnostics, err := s.instance(file)
	if err != nil {
		log.Error().Err(err).Str("file", file).Msg("Error getting file from pack")
		webutils.WriteError(w, err)
		return
	}
	logDiagnostics(file, diagnostics)
	webutils.WriteJson(w, &fileView{Data: data, Diagnostics: webutils.ErrorStrings(diagnostics)})
}

func (s *Server) HandlerDumpPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	f, err := vfs.DirectoryGetFile(s.imp.Directory(), file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	reader, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	defer f.Close()
	webutils.WriteFile(w, reader, file)
}

// HandlerSpewPackFile prints the decoded structure as plain text.
func (s *Server) HandlerSpewPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	data, _, err := s.instance(file)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	utils.Fdump(w, data)
}

func (s *Server) HandlerGLTFPackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]

	var buf bytes.Buffer
	diagnostics, err := s.imp.ExportGLTF(file, &buf)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	logDiagnostics(file, diagnostics)
	webutils.WriteFile(w, &buf, pack.BaseName(file)+".glb")
}

func (s *Server) image(file string, mip int) (image.Image, error) {
	if pack.Extension(file) == ".TX" {
		data, err := pack.GetInstanceHandler(s.imp.Directory(), file)
		if err != nil {
			return nil, err
		}
		return data.(*tx.Texture).Image(mip)
	}
	if mip != 0 {
		return nil, errors.Errorf("'%s' has no mip levels", file)
	}
	t, diagnostics, err := s.imp.LoadTexture(file)
	if err != nil {
		return nil, err
	}
	logDiagnostics(file, diagnostics)
	return t.Image, nil
}

// HandlerImagePackFile renders a texture level, optionally scaled down with ?size=N.
func (s *Server) HandlerImagePackFile(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	mip, err := strconv.Atoi(mux.Vars(r)["mip"])
	if err != nil {
		webutils.WriteError(w, errors.Errorf("mip '%s' is not integer", mux.Vars(r)["mip"]))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = textureformats.FormatPNG
	}
	size := 0
	if v := r.URL.Query().Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			webutils.WriteError(w, errors.Errorf("size '%s' is not integer", v))
			return
		}
	}

	img, err := s.image(file, mip)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := textureformats.Encode(&buf, textureformats.Fit(img, size), format); err != nil {
		webutils.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", textureformats.MimeType(format))
	webutils.WriteResult(w, buf.Bytes())
}
