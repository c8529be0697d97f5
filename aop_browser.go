package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mogaika/aop_browser/config"
	"github.com/mogaika/aop_browser/importer"
	"github.com/mogaika/aop_browser/pack"
	"github.com/mogaika/aop_browser/utils"
	"github.com/mogaika/aop_browser/vfs"
	"github.com/mogaika/aop_browser/web"
)

func dump(imp *importer.Importer, name string) error {
	var data interface{}
	var diagnostics []error
	var err error
	switch pack.Extension(name) {
	case ".GM":
		var s *importer.Scene
		if s, err = imp.LoadScene(name); err == nil {
			data, diagnostics = s, s.Diagnostics
		}
	case ".AN":
		var a *importer.Animation
		if a, err = imp.LoadAnimation(name); err == nil {
			data, diagnostics = a, a.Diagnostics
		}
	default:
		data, err = pack.GetInstanceHandler(imp.Directory(), name)
	}
	if err != nil {
		return err
	}
	for _, diag := range diagnostics {
		log.Warn().Str("file", name).Err(diag).Msg("Import problem")
	}
	utils.Dump(data)
	return nil
}

func convert(imp *importer.Importer, name, out string) error {
	if out == "" {
		out = pack.BaseName(name) + ".glb"
	}
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "Failed to create '%s'", out)
	}
	defer f.Close()

	diagnostics, err := imp.ExportGLTF(name, f)
	if err != nil {
		return err
	}
	for _, diag := range diagnostics {
		log.Warn().Str("file", name).Err(diag).Msg("Import problem")
	}
	log.Info().Str("file", name).Str("out", out).Msg("Converted")
	return nil
}

func main() {
	var addr, dir, configPath, encoding, dumpFile, gltfFile, out string
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to exported scenes, skeletons, clips and textures")
	flag.StringVar(&configPath, "config", "", "Path to yaml import settings")
	flag.StringVar(&encoding, "encoding", "", "Text encoding override, one of: "+strings.Join(config.ListEncodings(), ", "))
	flag.StringVar(&dumpFile, "dump", "", "Print decoded file from -dir and exit")
	flag.StringVar(&gltfFile, "gltf", "", "Convert .gm or .an file from -dir into glb and exit")
	flag.StringVar(&out, "o", "", "Output path for -gltf, <name>.glb by default")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if dir == "" {
		flag.PrintDefaults()
		return
	}

	settings, err := config.LoadSettings(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load settings")
	}
	if encoding != "" {
		settings.Encoding = encoding
	}
	if err := config.SetEncoding(settings.Encoding); err != nil {
		log.Fatal().Err(err).Msg("Failed to set encoding")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid directory")
	}
	imp := importer.New(vfs.NewDirectoryDriver(absDir), settings)

	switch {
	case dumpFile != "":
		err = dump(imp, dumpFile)
	case gltfFile != "":
		err = convert(imp, gltfFile, out)
	default:
		err = web.StartServer(addr, imp)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
}
