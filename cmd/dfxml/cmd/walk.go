package cmd

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dfxmlgo/dfxml"
)

// walkConfig is the YAML configuration of the walk command.
type walkConfig struct {
	Hashes  []string `yaml:"hashes"`
	Workers int      `yaml:"workers"`
	Ignore  []string `yaml:"ignore"`
}

func defaultWalkConfig() walkConfig {
	return walkConfig{
		Hashes:  []string{"md5", "sha1"},
		Workers: runtime.NumCPU(),
	}
}

func loadWalkConfig(path string) (walkConfig, error) {
	cfg := defaultWalkConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}

var (
	walkConfigPath string
	walkOutput     string
)

var walkCmd = &cobra.Command{
	Use:   "walk DIR",
	Short: "Produce a DFXML document from a directory tree",
	Long: `walk visits every regular file under DIR and writes a DFXML document
with one file record each, hashing file contents in parallel. Hash
algorithms, worker count and ignore patterns come from an optional YAML
configuration file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWalkConfig(walkConfigPath)
		if err != nil {
			return err
		}
		types := make([]dfxml.HashType, 0, len(cfg.Hashes))
		for _, name := range cfg.Hashes {
			ht, err := dfxml.ParseHashType(name)
			if err != nil {
				return err
			}
			types = append(types, ht)
		}

		root := args[0]
		files, err := walkTree(root, cfg, types)
		if err != nil {
			return err
		}
		logger.Debug("walked tree",
			zap.String("root", root),
			zap.Int("files", len(files)))

		doc := dfxml.NewDocument()
		doc.Creator = &dfxml.Creator{
			Program: "dfxml",
			Version: dfxml.Version,
			ExecutionEnvironment: dfxml.ExecutionEnvironment{
				CommandLine: strings.Join(os.Args, " "),
				StartTime:   dfxml.NewTimestamp(time.Now().UTC()),
			},
		}
		doc.Sources = []string{root}
		for _, f := range files {
			doc.AppendChild(f)
		}

		out := os.Stdout
		if walkOutput != "" {
			out, err = os.Create(walkOutput)
			if err != nil {
				return err
			}
			defer out.Close()
		}
		return dfxml.NewEncoder(out).Encode(doc)
	},
}

func walkTree(root string, cfg walkConfig, types []dfxml.HashType) ([]*dfxml.File, error) {
	paths := make(chan string)
	results := make(chan *dfxml.File)

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				f, err := fileRecord(root, path, types)
				if err != nil {
					logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
					continue
				}
				results <- f
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var walkErr error
	go func() {
		defer close(paths)
		walkErr = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			for _, pat := range cfg.Ignore {
				if ok, _ := filepath.Match(pat, d.Name()); ok {
					return nil
				}
			}
			paths <- path
			return nil
		})
	}()

	var files []*dfxml.File
	for f := range results {
		files = append(files, f)
	}
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	return files, nil
}

func fileRecord(root, path string, types []dfxml.HashType) (*dfxml.File, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	f := dfxml.NewFile()
	f.Filename = filepath.ToSlash(rel)
	f.Filesize = dfxml.U64(uint64(info.Size()))
	f.Mode = dfxml.U32(uint32(info.Mode().Perm()))
	nt := dfxml.NameTypeRegular
	f.NameType = &nt
	mt := dfxml.MetaTypeRegular
	f.MetaType = &mt
	f.Alloc = dfxml.Bool(true)
	f.Mtime = dfxml.NewTimestamp(info.ModTime().UTC())
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		f.Inode = dfxml.U64(st.Ino)
		f.Nlink = dfxml.U32(uint32(st.Nlink))
		f.UID = dfxml.I32(int32(st.Uid))
		f.GID = dfxml.I32(int32(st.Gid))
	}
	if len(types) > 0 {
		if err := hashInto(&f.Hashes, path, types); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func hashInto(h *dfxml.Hashes, path string, types []dfxml.HashType) error {
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	hashers := make([]hash.Hash, len(types))
	writers := make([]io.Writer, len(types))
	for i, t := range types {
		switch t {
		case dfxml.MD5:
			hashers[i] = md5.New()
		case dfxml.SHA1:
			hashers[i] = sha1.New()
		case dfxml.SHA256:
			hashers[i] = sha256.New()
		default:
			return fmt.Errorf("unsupported hash algorithm %s", t)
		}
		writers[i] = hashers[i]
	}
	if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
		return err
	}
	for i, t := range types {
		h.Set(t, hex.EncodeToString(hashers[i].Sum(nil)))
	}
	return nil
}

func init() {
	walkCmd.Flags().StringVar(&walkConfigPath, "config", "", "YAML configuration file")
	walkCmd.Flags().StringVarP(&walkOutput, "output", "o", "", "write output to file instead of stdout")
	rootCmd.AddCommand(walkCmd)
}
