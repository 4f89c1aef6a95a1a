// Package tree walks a root directory into an immutable, path-addressable tree.
package tree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/temirov/srcview/internal/language"
	"github.com/temirov/srcview/internal/treepath"
	"github.com/temirov/srcview/internal/types"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorBuildFailureFormat renders a BuildFailure.
	errorBuildFailureFormat = "building tree at %s: %v"

	logMessageTreeBuilt = "tree built"
	logFieldRoot        = "root"
	logFieldDirectories = "directories"
	logFieldFiles       = "files"

	gitignoreDirectorySuffix = "/"
)

var (
	// ErrNotDirectory reports a root that is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrSymlinkCycle reports a directory symlink that leads back to one of its ancestors.
	ErrSymlinkCycle = errors.New("symlink cycle")
)

// BuildFailure aborts a build when any entry under the root cannot be read.
// No partial tree accompanies it.
type BuildFailure struct {
	Path string
	Err  error
}

// Error returns the error string.
func (failure *BuildFailure) Error() string {
	return fmt.Sprintf(errorBuildFailureFormat, failure.Path, failure.Err)
}

// Unwrap exposes the underlying cause.
func (failure *BuildFailure) Unwrap() error {
	return failure.Err
}

// Builder builds source trees using configured options.
type Builder struct {
	// IgnoreNames are basenames excluded at any depth.
	IgnoreNames []string
	// GitIgnore optionally excludes root-relative paths matched by .gitignore rules.
	GitIgnore *ignore.GitIgnore
	// Languages classifies files. The zero value behaves like language.DefaultMap.
	Languages language.Map
	Logger    *zap.Logger
}

// Build walks rootDirectoryPath and returns the fully materialized tree.
// The root node carries the sentinel path ".".
func (builder *Builder) Build(rootDirectoryPath string) (*types.TreeNode, error) {
	absoluteRootDirPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	rootInfo, rootStatError := os.Stat(absoluteRootDirPath)
	if rootStatError != nil {
		return nil, &BuildFailure{Path: absoluteRootDirPath, Err: rootStatError}
	}
	if !rootInfo.IsDir() {
		return nil, &BuildFailure{Path: absoluteRootDirPath, Err: ErrNotDirectory}
	}

	walker := treeWalker{
		builder:      builder,
		ignoredNames: makeNameSet(builder.IgnoreNames),
		rootPath:     absoluteRootDirPath,
	}
	rootNode := &types.TreeNode{
		Kind: types.NodeKindDirectory,
		Name: filepath.Base(absoluteRootDirPath),
		Path: treepath.Root(),
	}
	children, buildError := walker.buildChildren(absoluteRootDirPath, treepath.Root(), []os.FileInfo{rootInfo})
	if buildError != nil {
		return nil, buildError
	}
	rootNode.Children = children

	summary := Summarize(rootNode)
	builder.logger().Debug(logMessageTreeBuilt,
		zap.String(logFieldRoot, absoluteRootDirPath),
		zap.Int(logFieldDirectories, summary.TotalDirectories),
		zap.Int(logFieldFiles, summary.TotalFiles),
	)
	return rootNode, nil
}

func (builder *Builder) logger() *zap.Logger {
	if builder.Logger == nil {
		return zap.NewNop()
	}
	return builder.Logger
}

type treeWalker struct {
	builder      *Builder
	ignoredNames map[string]struct{}
	rootPath     string
}

// buildChildren lists one directory, filters ignored entries, sorts the rest by
// name and recurses depth-first. lineage holds the directories from the root
// down to the current one and is used to detect symlink cycles.
func (walker treeWalker) buildChildren(currentDirectoryPath string, currentTreePath treepath.Path, lineage []os.FileInfo) ([]*types.TreeNode, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, &BuildFailure{Path: currentDirectoryPath, Err: readDirectoryError}
	}

	entryNames := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		if _, ignored := walker.ignoredNames[directoryEntry.Name()]; ignored {
			continue
		}
		entryNames = append(entryNames, directoryEntry.Name())
	}
	sort.Strings(entryNames)

	nodes := make([]*types.TreeNode, 0, len(entryNames))
	for _, entryName := range entryNames {
		childPath := filepath.Join(currentDirectoryPath, entryName)
		childTreePath, childPathError := currentTreePath.Child(entryName)
		if childPathError != nil {
			return nil, &BuildFailure{Path: childPath, Err: childPathError}
		}

		// Stat follows symlinks; a dangling link fails here.
		entryInfo, statError := os.Stat(childPath)
		if statError != nil {
			return nil, &BuildFailure{Path: childPath, Err: statError}
		}
		if walker.matchesGitIgnore(childTreePath, entryInfo.IsDir()) {
			continue
		}

		if !entryInfo.IsDir() {
			nodes = append(nodes, &types.TreeNode{
				Kind:     types.NodeKindFile,
				Name:     entryName,
				Path:     childTreePath,
				Language: walker.builder.Languages.Classify(entryName),
			})
			continue
		}

		for _, ancestorInfo := range lineage {
			if os.SameFile(ancestorInfo, entryInfo) {
				return nil, &BuildFailure{Path: childPath, Err: ErrSymlinkCycle}
			}
		}
		childNodes, buildError := walker.buildChildren(childPath, childTreePath, append(lineage[:len(lineage):len(lineage)], entryInfo))
		if buildError != nil {
			return nil, buildError
		}
		nodes = append(nodes, &types.TreeNode{
			Kind:     types.NodeKindDirectory,
			Name:     entryName,
			Path:     childTreePath,
			Children: childNodes,
		})
	}
	return nodes, nil
}

func (walker treeWalker) matchesGitIgnore(candidate treepath.Path, isDirectory bool) bool {
	if walker.builder.GitIgnore == nil {
		return false
	}
	if walker.builder.GitIgnore.MatchesPath(candidate.String()) {
		return true
	}
	return isDirectory && walker.builder.GitIgnore.MatchesPath(candidate.String()+gitignoreDirectorySuffix)
}

func makeNameSet(names []string) map[string]struct{} {
	nameSet := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if trimmedName == "" {
			continue
		}
		nameSet[trimmedName] = struct{}{}
	}
	return nameSet
}

// Summarize counts the directories (excluding the root) and files under root.
func Summarize(root *types.TreeNode) types.TreeSummary {
	var summary types.TreeSummary
	Walk(root, func(node *types.TreeNode) {
		if node == root {
			return
		}
		if node.IsDirectory() {
			summary.TotalDirectories++
		} else {
			summary.TotalFiles++
		}
	})
	return summary
}

// Walk visits root and its descendants in pre-order.
func Walk(root *types.TreeNode, visit func(*types.TreeNode)) {
	if root == nil {
		return
	}
	visit(root)
	for _, child := range root.Children {
		Walk(child, visit)
	}
}
