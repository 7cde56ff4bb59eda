// Command shbake bakes a cubemap into second-order spherical harmonics.
//
// Faces come either from six image files (+X, -X, +Y, -Y, +Z, -Z) or from
// an OpenEXR cube map:
//
//	shbake -faces px.png,nx.png,py.png,ny.png,pz.png,nz.png -mode gamma
//	shbake -exr studio.exr -mode rgbm
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/shbake"
	_ "github.com/gogpu/shbake/gpu" // enable GPU baking
	"github.com/gogpu/shbake/sh"
	"github.com/gogpu/shbake/source/exrcube"
	"github.com/gogpu/shbake/source/imagefaces"
)

var modes = []shbake.DecodeMode{shbake.DecodeRaw, shbake.DecodeGamma, shbake.DecodeRGBE, shbake.DecodeRGBM}

func parseMode(s string) (shbake.DecodeMode, error) {
	for _, m := range modes {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown decode mode %q", s)
}

func main() {
	var (
		faceList = flag.String("faces", "", "comma-separated face images in +X,-X,+Y,-Y,+Z,-Z order")
		exrPath  = flag.String("exr", "", "OpenEXR cube map (N x 6N)")
		modeName = flag.String("mode", shbake.DefaultDecodeMode.String(), "decode mode: raw, gamma, rgbe, rgbm")
		size     = flag.Int("size", 0, "resample image faces to this size (0 keeps the +X size)")
		workers  = flag.Int("workers", 0, "CPU workers (0 uses GOMAXPROCS)")
		noGPU    = flag.Bool("nogpu", false, "disable the GPU backend")
		verbose  = flag.Bool("v", false, "log backend selection")
	)
	flag.Parse()

	if *verbose {
		shbake.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	mode, err := parseMode(*modeName)
	if err != nil {
		log.Fatal(err)
	}

	src, err := openSource(*faceList, *exrPath, *size, mode)
	if err != nil {
		log.Fatalf("Failed to load cubemap: %v", err)
	}

	opts := []shbake.Option{shbake.WithWorkers(*workers)}
	if *noGPU {
		opts = append(opts, shbake.WithGPUBackend(nil))
	}
	b := shbake.NewBaker(opts...)
	defer b.Close()

	var out sh.SH3
	if err := b.FromTextureCube(src, &out, mode); err != nil {
		log.Fatalf("Bake failed: %v", err)
	}
	printSH(&out)
}

func openSource(faceList, exrPath string, size int, mode shbake.DecodeMode) (shbake.FaceReader, error) {
	switch {
	case exrPath != "" && faceList != "":
		return nil, errors.New("use either -faces or -exr")
	case exrPath != "":
		return exrcube.Open(exrPath, mode)
	case faceList != "":
		parts := strings.Split(faceList, ",")
		if len(parts) != shbake.FaceCount {
			return nil, fmt.Errorf("-faces needs %d files, got %d", shbake.FaceCount, len(parts))
		}
		var paths [shbake.FaceCount]string
		copy(paths[:], parts)
		return imagefaces.Open(paths, imagefaces.WithSize(size))
	default:
		return nil, errors.New("no input: pass -faces or -exr")
	}
}

var bandNames = [sh.Bands]string{"L00", "L1-1", "L10", "L11", "L2-2", "L2-1", "L20", "L21", "L22"}

var axes = []struct {
	name string
	dir  sh.Vec3
}{
	{"+X", sh.Vec3{X: 1}}, {"-X", sh.Vec3{X: -1}},
	{"+Y", sh.Vec3{Y: 1}}, {"-Y", sh.Vec3{Y: -1}},
	{"+Z", sh.Vec3{Z: 1}}, {"-Z", sh.Vec3{Z: -1}},
}

func printSH(s *sh.SH3) {
	for band, name := range bandNames {
		fmt.Printf("%-5s %12.6f %12.6f %12.6f\n", name,
			s.Coefficient(band, 0), s.Coefficient(band, 1), s.Coefficient(band, 2))
	}
	fmt.Println()
	fmt.Println("irradiance")
	for _, a := range axes {
		r, g, b := s.Irradiance(a.dir)
		fmt.Printf("%-5s %12.6f %12.6f %12.6f\n", a.name, r, g, b)
	}
}
