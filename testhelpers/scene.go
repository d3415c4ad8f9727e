package testhelpers

import (
	"path/filepath"
	"testing"
)

// Scene is a temporary directory holding a repository under test, plus any
// remotes and clones created around it.
type Scene struct {
	Dir  string
	Repo *GitRepo
	root string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a repository in a fresh temporary directory, removed
// when the test ends.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, "repo")

	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:  dir,
		Repo: repo,
		root: root,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// Clone clones url into a sibling directory named name. Useful for playing
// a second developer pushing to a shared remote.
func (s *Scene) Clone(t *testing.T, url, name string) *GitRepo {
	t.Helper()

	repo, err := NewGitRepoFromURL(filepath.Join(s.root, name), url)
	if err != nil {
		t.Fatalf("Failed to clone %s: %v", url, err)
	}
	return repo
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// RemoteSceneSetup commits once on main and publishes it to a bare "origin".
func RemoteSceneSetup(scene *Scene) error {
	if err := scene.Repo.CommitFile("a.txt", "one\ntwo\nthree\n", "initial"); err != nil {
		return err
	}
	if _, err := scene.Repo.CreateBareRemote("origin"); err != nil {
		return err
	}
	return scene.Repo.PushBranch("origin", "main")
}
