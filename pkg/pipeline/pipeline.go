// Package pipeline wires the loader, optional weights division, optional
// noise scaling, the S+C finder and the linker into the single
// synchronous call described in spec.md §2's data-flow diagram:
// loader -> weights -> noise scaling -> S+C -> linker -> (caller writes
// the catalogue and mask).
package pipeline

import (
	"cubefind/internal/logging"
	"cubefind/pkg/config"
	"cubefind/pkg/cube"
	"cubefind/pkg/linker"
	"cubefind/pkg/region"
	"cubefind/pkg/scfind"
)

// Result is everything Run produces: the detection mask and the
// surviving sources. The (possibly weights-divided and noise-scaled)
// data cube used internally is not returned, matching spec.md's
// "loader -> ... -> mask_out, source_table" signature.
type Result struct {
	Mask    *cube.Cube
	Sources []linker.Source
}

// Run executes the full pipeline against the cube at cfg.Input.Cube,
// optionally dividing by a weights cube and applying flags, then runs
// the S+C finder and linker per the rest of cfg. log may be nil.
func Run(cfg *config.Config, flags []region.Flag, log *logging.Logger) (*Result, error) {
	var reg *region.Region
	if cfg.Input.Region != "" {
		r, err := region.ParseRegion(cfg.Input.Region)
		if err != nil {
			return nil, err
		}
		reg = &r
	}

	data, err := cube.Load(cfg.Input.Cube, reg, log)
	if err != nil {
		return nil, err
	}

	if cfg.Input.Weights != "" {
		weights, err := cube.Load(cfg.Input.Weights, reg, log)
		if err != nil {
			return nil, err
		}
		if err := data.DivideByWeights(weights); err != nil {
			return nil, err
		}
	}

	for _, f := range flags {
		if err := data.ApplyFlag(f); err != nil {
			return nil, err
		}
	}

	original := data
	if cfg.ScaleNoise.Enable {
		scaled, err := scaleNoise(data, cfg, log)
		if err != nil {
			return nil, err
		}
		data = scaled
	}

	scCfg := scfind.Config{
		KernelsSpatial:  cfg.ScFind.KernelsSpatial,
		KernelsSpectral: cfg.ScFind.KernelsSpectral,
		Threshold:       cfg.ScFind.Threshold,
		MaskScaleXY:     cfg.ScFind.MaskScaleXY,
		Statistic:       cfg.ScFind.Statistic,
		FluxRange:       config.ParseFluxRange(cfg.ScFind.FluxRange),
	}
	mask, err := scfind.Run(data, scCfg, log)
	if err != nil {
		return nil, err
	}

	lnCfg := linker.Config{
		RadiusX: cfg.Linker.RadiusX, RadiusY: cfg.Linker.RadiusY, RadiusZ: cfg.Linker.RadiusZ,
		MinSizeX: cfg.Linker.MinSizeX, MinSizeY: cfg.Linker.MinSizeY, MinSizeZ: cfg.Linker.MinSizeZ,
		RemoveNegative: cfg.Linker.RemoveNegative,
	}
	sources, err := linker.Run(mask, original, lnCfg)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline", "pipeline complete", map[string]any{"sources": len(sources)})
	return &Result{Mask: mask, Sources: sources}, nil
}
