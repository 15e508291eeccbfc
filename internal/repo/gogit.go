package repo

import (
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"pybuilder/internal/errors"
	"pybuilder/internal/resolve"
)

func (m *Manager) open() (*git.Repository, error) {
	if !m.Exists() {
		return nil, m.notFound()
	}
	r, err := git.PlainOpen(m.Path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.ErrNotARepository.Wrap(fmt.Errorf("%s: %w", m.Path, err))
		}
		return nil, fmt.Errorf("open %s: %w", m.Path, err)
	}
	return r, nil
}

// Verify checks that Path holds a git repository.
func (m *Manager) Verify() error {
	_, err := m.open()
	return err
}

// LocalTags reads the tags already present in the clone. Nothing is fetched.
func (m *Manager) LocalTags() (resolve.TagSet, error) {
	r, err := m.open()
	if err != nil {
		return nil, err
	}

	iter, err := r.Tags()
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	defer iter.Close()

	tags := resolve.NewTagSet()
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags.Add(ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read tags: %w", err)
	}
	return tags, nil
}
