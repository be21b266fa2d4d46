package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ncgr/azulejo/internal/util"
	"github.com/ncgr/azulejo/logger"
	"github.com/ncgr/azulejo/pkg/cluster"
	"github.com/ncgr/azulejo/pkg/config"
	mydb "github.com/ncgr/azulejo/pkg/db"
	"github.com/ncgr/azulejo/pkg/homology"
	"github.com/ncgr/azulejo/pkg/proxy"
	"github.com/ncgr/azulejo/pkg/synteny"
)

const VERSION = "0.4.0"

func usage() {
	fmt.Fprintln(os.Stderr, `usage: azulejo <command> [flags]

commands:
  cluster     build co-membership graph and histograms from cluster files
  synteny     compute synteny anchors over homology tables
  dagchainer  attach external DAGchainer synteny to homology tables
  proxy       downselect one proxy gene per homology cluster
  load-db     load pipeline outputs into the result database`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	if err := logger.InitLogger(logger.LevelFromEnv()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env found, using local environment")
	}

	runID := uuid.New().String()
	command := os.Args[1]
	args := os.Args[2:]
	logger.Info("Start:", zap.String("Version", VERSION),
		zap.String("command", command), zap.String("run_id", runID))

	var err error
	switch command {
	case "cluster":
		err = runCluster(args)
	case "synteny":
		err = runSynteny(args)
	case "dagchainer":
		err = runDagchainer(args)
	case "proxy":
		err = runProxy(args)
	case "load-db":
		err = runLoadDB(args, runID)
	default:
		usage()
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// resolveSet accepts a set directory path or a set name under the data
// directory.
func resolveSet(cfg config.Config, set string) (dir, name string) {
	if util.DirExists(set) {
		return set, filepath.Base(set)
	}
	return filepath.Join(cfg.DataDir, set), filepath.Base(set)
}

func runCluster(args []string) error {
	fs := flag.NewFlagSet("cluster", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	dir := fs.String("dir", "", "directory of per-cluster FASTA files")
	stem := fs.String("stem", "", "output name stem")
	identity := fs.Float64("identity", 0.0, "clustering identity level (0-1)")
	substrs := fs.String("substrs", "", "substring synonym table")
	dups := fs.String("dups", "", "duplicate synonym table")
	minIDFreq := fs.Int("min-id-freq", 0, "minimum component frequency to report")
	del := fs.Bool("delete", false, "delete cluster files as they are consumed")
	writeIDs := fs.Bool("write-ids", false, "write any/all component histograms")
	geneWeighted := fs.Bool("gene-weighted", false, "weight component counts by cluster size")
	workers := fs.Int("workers", 0, "parallel cluster parsers (0 = GOMAXPROCS)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("cluster: -dir is required")
	}
	if *stem == "" {
		*stem = filepath.Base(filepath.Dir(*dir))
	}
	if *workers == 0 {
		*workers = cfg.Workers
	}

	synonyms := make(map[string][]string)
	for _, table := range []string{*substrs, *dups} {
		if table == "" {
			continue
		}
		logger.Debug("using synonyms", zap.String("table", table))
		extra, err := cluster.ReadSynonyms(table)
		if err != nil {
			return err
		}
		for id, syns := range extra {
			synonyms[id] = append(synonyms[id], syns...)
		}
	}

	outName := cluster.ClusterSetName(*stem, *identity)
	outDir := filepath.Dir(*dir)
	logger.Info("clustering output",
		zap.String("identity_pct", cluster.PrettyFloat(*identity*100, 2)),
		zap.String("set", outName))

	result, err := cluster.Build(context.Background(), *dir, cluster.BuildOptions{
		Synonyms:      synonyms,
		CountClusters: !*geneWeighted,
		Delete:        *del,
		Workers:       *workers,
	})
	if err != nil {
		return err
	}
	logger.Info("graph built",
		zap.Int("nodes", result.Graph.NodeCount()),
		zap.Int("edges", result.Graph.EdgeCount()),
		zap.Int("clusters", len(result.Degrees)))

	if err := cluster.WriteIDTable(filepath.Join(outDir, outName+"-ids.tsv"), result); err != nil {
		return err
	}
	if err := cluster.WriteDegreeHistogram(filepath.Join(outDir, outName+"-degreedist.tsv"), result.DegreeCounter); err != nil {
		return err
	}
	if *writeIDs {
		if err := cluster.WriteComponentHistogram(filepath.Join(outDir, outName+"-anyhist.tsv"),
			result.AnyCounter, *identity, *minIDFreq); err != nil {
			return err
		}
		if err := cluster.WriteComponentHistogram(filepath.Join(outDir, outName+"-allhist.tsv"),
			result.AllCounter, *identity, *minIDFreq); err != nil {
			return err
		}
	}
	return result.Graph.WriteGMLFile(filepath.Join(outDir, outName+".gml"))
}

// readHomologyFrames loads the per-genome tables with the given ending.
func readHomologyFrames(fileSet *homology.FileSet, ending string) (map[string][]homology.Record, error) {
	paths, err := fileSet.TablePaths(ending)
	if err != nil {
		return nil, err
	}
	frames := make(map[string][]homology.Record, len(paths))
	for stem, path := range paths {
		logger.Debug("reading table", zap.String("path", path))
		records, err := homology.ReadTable(path)
		if err != nil {
			return nil, err
		}
		frames[stem] = records
	}
	return frames, nil
}

func runSynteny(args []string) error {
	fs := flag.NewFlagSet("synteny", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	set := fs.String("set", "", "set name or directory")
	k := fs.Int("k", 0, "synteny block length")
	rmer := fs.Bool("rmer", false, "collapse repeats in blocks")
	workers := fs.Int("workers", 0, "parallel genome passes (0 = GOMAXPROCS)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *set == "" {
		return fmt.Errorf("synteny: -set is required")
	}
	if *k == 0 {
		*k = cfg.K
	}
	if !*rmer {
		*rmer = cfg.Rmer
	}
	if *workers == 0 {
		*workers = cfg.Workers
	}

	setDir, setName := resolveSet(cfg, *set)
	fileSet, err := homology.ReadFileSet(setDir, setName)
	if err != nil {
		return err
	}
	frames, err := readHomologyFrames(fileSet, homology.HomologyEnding)
	if err != nil {
		return err
	}

	blockName := synteny.BlockName(*k, *rmer)
	logger.Debug("calculating synteny blocks", zap.String("block", blockName))
	result, err := synteny.Detect(context.Background(), frames, synteny.Params{
		K: *k, Rmer: *rmer, Workers: *workers,
	})
	if err != nil {
		return err
	}
	logger.Info("anchor aggregation done",
		zap.Int("hashes", len(result.Anchors)),
		zap.Int("informative", len(result.InformativeAnchors())))

	for stem, records := range result.Frames {
		name := fmt.Sprintf("%s-%s%s", stem, blockName, homology.SyntenyEnding)
		if err := homology.WriteTable(filepath.Join(setDir, name), records, true); err != nil {
			return err
		}
	}
	anchorName := fmt.Sprintf("%s-%s-anchors.tsv", setName, blockName)
	return result.WriteAnchorTable(filepath.Join(setDir, anchorName))
}

func runDagchainer(args []string) error {
	fs := flag.NewFlagSet("dagchainer", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	set := fs.String("set", "", "set name or directory")
	clustersPath := fs.String("clusters", "", "DAGchainer clusters.tsv")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *set == "" || *clustersPath == "" {
		return fmt.Errorf("dagchainer: -set and -clusters are required")
	}
	setDir, setName := resolveSet(cfg, *set)
	fileSet, err := homology.ReadFileSet(setDir, setName)
	if err != nil {
		return err
	}
	frames, err := readHomologyFrames(fileSet, homology.HomologyEnding)
	if err != nil {
		return err
	}
	assignments, counts, err := synteny.ReadDagchainer(*clustersPath)
	if err != nil {
		return err
	}
	synteny.AttachDagchainer(frames, assignments, counts)
	for stem, records := range frames {
		name := fmt.Sprintf("%s-dagchainer%s", stem, homology.SyntenyEnding)
		if err := homology.WriteTable(filepath.Join(setDir, name), records, true); err != nil {
			return err
		}
	}
	return nil
}

// loadProxyFrame concatenates the per-genome synteny tables of one type,
// stamping each row with its genome stem.
func loadProxyFrame(fileSet *homology.FileSet, syntenyType string) ([]homology.Record, error) {
	ending := fmt.Sprintf("-%s%s", syntenyType, homology.SyntenyEnding)
	frames, err := readHomologyFrames(fileSet, ending)
	if err != nil {
		return nil, err
	}
	var all []homology.Record
	for _, stem := range fileSet.Stems {
		records, ok := frames[stem]
		if !ok {
			return nil, fmt.Errorf("no %s table for stem %s", syntenyType, stem)
		}
		for i := range records {
			records[i].Stem = stem
		}
		all = append(all, records...)
	}
	return all, nil
}

func runProxy(args []string) error {
	fs := flag.NewFlagSet("proxy", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	set := fs.String("set", "", "set name or directory")
	syntenyType := fs.String("synteny", "", "synteny type (e.g. kmer6, dagchainer)")
	fs.Parse(args)
	userPrefs := fs.Args()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *set == "" || *syntenyType == "" {
		return fmt.Errorf("proxy: -set and -synteny are required")
	}
	if len(userPrefs) == 0 {
		userPrefs = cfg.Preferences
	}

	setDir, setName := resolveSet(cfg, *set)
	fileSet, err := homology.ReadFileSet(setDir, setName)
	if err != nil {
		return err
	}
	prefs, err := proxy.MergePreferences(userPrefs, fileSet.Stems)
	if err != nil {
		return err
	}
	order := "default"
	if len(userPrefs) > 0 {
		order = "non-default"
	}
	logger.Debug("genome preference order",
		zap.String("order", order), zap.Strings("prefs", prefs))

	records, err := loadProxyFrame(fileSet, *syntenyType)
	if err != nil {
		return err
	}
	proxyName := fmt.Sprintf("%s-%s%s", setName, *syntenyType, homology.ProxyEnding)
	if err := homology.WriteProxyTable(filepath.Join(setDir, proxyName), records); err != nil {
		return err
	}

	selector := proxy.NewSelector(prefs)
	chosen, err := selector.Downselect(records)
	if err != nil {
		return err
	}
	selector.LogSummary()
	downName := fmt.Sprintf("%s-%s-downselected%s", setName, *syntenyType, homology.ProxyEnding)
	return homology.WriteProxyTable(filepath.Join(setDir, downName), chosen)
}

func runLoadDB(args []string, runID string) error {
	fs := flag.NewFlagSet("load-db", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	set := fs.String("set", "", "set name or directory")
	syntenyType := fs.String("synteny", "", "synteny type (e.g. kmer6, dagchainer)")
	dbPath := fs.String("db", "", "result database path")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *set == "" || *syntenyType == "" {
		return fmt.Errorf("load-db: -set and -synteny are required")
	}
	if *dbPath == "" {
		*dbPath = cfg.ResolveDB()
	}
	if err := util.EnsureDir(filepath.Dir(*dbPath)); err != nil {
		return err
	}

	setDir, setName := resolveSet(cfg, *set)
	fileSet, err := homology.ReadFileSet(setDir, setName)
	if err != nil {
		return err
	}
	records, err := loadProxyFrame(fileSet, *syntenyType)
	if err != nil {
		return err
	}

	// Reasons come from the downselected table when it exists.
	downName := fmt.Sprintf("%s-%s-downselected%s", setName, *syntenyType, homology.ProxyEnding)
	downPath := filepath.Join(setDir, downName)
	if util.FileExists(downPath) {
		downselected, err := homology.ReadTable(downPath)
		if err != nil {
			return err
		}
		reasons := make(map[string]string, len(downselected))
		for _, r := range downselected {
			reasons[r.ID] = r.Reason
		}
		for i := range records {
			records[i].Reason = reasons[records[i].ID]
		}
	}

	sizes := make(map[int]int)
	for _, r := range records {
		sizes[r.ClusterID] = r.ClusterSize
	}

	ctx := context.Background()
	store, err := mydb.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	params := fmt.Sprintf("synteny=%s genes=%d", *syntenyType, len(records))
	if _, err := store.RegisterRun(ctx, runID, "load-db", setName, params); err != nil {
		return err
	}
	if err := store.LoadClusters(ctx, sizes); err != nil {
		return err
	}
	if err := store.LoadGenes(ctx, records); err != nil {
		return err
	}
	logger.Info("Loaded result database",
		zap.String("DB_LOC", *dbPath),
		zap.Int("genes", len(records)),
		zap.Int("clusters", len(sizes)))
	return nil
}
