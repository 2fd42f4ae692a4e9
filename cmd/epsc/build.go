package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"epscript/internal/buildpipeline"
	"epscript/internal/diagfmt"
	"epscript/internal/project"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [dir]",
		Short: "Compile every source of a project",
		Long: `Build compiles the files listed by [build].sources of epscript.toml (or every
*.eps file in dir when there is no manifest) concurrently and writes one
artifact per file into the output directory`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	cmd.Flags().IntP("jobs", "j", 0, "parallel workers (0 = manifest or GOMAXPROCS)")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the compile cache")
	cmd.Flags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/epscript)")
	cmd.Flags().String("emit", "", "artifact format (text|json|msgpack); default from manifest")
	cmd.Flags().String("out-dir", "", "output directory; default from manifest")
	addConstantFlags(cmd)
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	st := settingsFrom(cmd)
	if err := st.applyConstantFlags(cmd); err != nil {
		return err
	}
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root := st.root
	if st.manifest == nil {
		root = dir
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	cfg := st.config.Build

	files, err := project.CollectSources(root, cfg.Sources)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no sources found in %s", root)
	}

	emitStr, _ := cmd.Flags().GetString("emit")
	if emitStr == "" {
		emitStr = cfg.Emit
	}
	emit, err := diagfmt.ParseEmitFormat(emitStr)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = filepath.Join(root, cfg.OutDir)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs <= 0 {
		jobs = cfg.Jobs
	}
	uiStr, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiStr)
	if err != nil {
		return err
	}

	req := &buildpipeline.BuildRequest{
		Files:          files,
		Root:           root,
		OutDir:         outDir,
		Emit:           emit,
		Jobs:           jobs,
		MaxDiagnostics: st.maxDiagnostics,
		Constants:      st.registry.Snapshot(),
		Timer:          st.timer,
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if !noCache && cfg.CacheEnabled() {
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		cache, err := buildpipeline.OpenDiskCache(cacheDir)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		req.Cache = cache
	}

	var res *buildpipeline.BuildResult
	if shouldUseTUI(mode) {
		res, err = runBuildWithUI(cmd.Context(), "epsc build", req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), req)
	}
	if res != nil {
		reportBuild(cmd.ErrOrStderr(), st, res)
	}
	if err != nil {
		return err
	}
	st.printTimings(cmd)
	if res.Err() != nil {
		return errFailed
	}
	return nil
}

// reportBuild prints diagnostics of failed files in request order and a summary line.
func reportBuild(w io.Writer, st *settings, res *buildpipeline.BuildResult) {
	for i := range res.Files {
		fr := &res.Files[i]
		switch {
		case fr.Err != nil:
			fmt.Fprintf(w, "%s: %v\n", fr.Path, fr.Err) //nolint:errcheck
		case fr.Result != nil && fr.Result.Bag.Len() > 0:
			diagfmt.Pretty(w, fr.Result.Bag, fr.Result.FileSet, st.prettyOpts())
			fmt.Fprintln(w) //nolint:errcheck
		}
	}
	fmt.Fprintf(w, "built %d %s (%d cached), %d failed, %d %s in %s\n", //nolint:errcheck
		len(res.Files), plural(len(res.Files), "file"), res.Cached,
		res.Failed, res.Errors, plural(res.Errors, "error"),
		res.Elapsed.Round(100_000))
}
