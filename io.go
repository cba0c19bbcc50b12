package modelsearch

import (
	"bufio"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// The registry kept inside each trial's model directory is append-only from the point of view
// of other trials: each per-trial record is written exactly once by its owning trial, and read
// fully before any scheduling decision. File names must not collide with checkpoint files, so
// every record carries a fixed prefix.
const (
	archFilePrefix   string = "architecture_"
	towersFilePrefix string = "num_towers_"
)

func archFile(dirPath string, trialID int) string {
	return dirPath + "/" + archFilePrefix + strconv.Itoa(trialID) + ".txt"
}

func towersFile(dirPath, generatorName string) string {
	return dirPath + "/" + towersFilePrefix + generatorName + ".txt"
}

// SaveArchitecture persists the architecture chosen for the given trial, one block tag per
// line. Encode-then-decode must reproduce the identical ordered tag sequence, including the
// empty sequence.
func SaveArchitecture(dirPath string, trialID int, arch Architecture) error {
	if trialID < 1 {
		return ErrNegativeTrial
	}
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return errors.Wrapf(err, "Couldn't make directory to save architecture")
	}

	f, err := os.Create(archFile(dirPath, trialID))
	if err != nil {
		return errors.Wrapf(err, "Can't save architecture, couldn't create file in %s", dirPath)
	}
	defer f.Close()

	for _, b := range arch {
		if _, err = f.WriteString(string(b) + "\n"); err != nil {
			return errors.Wrapf(err, "Can't save architecture for trial %d", trialID)
		}
	}
	return nil
}

// LoadArchitecture reads back the architecture persisted for the given trial, preserving order
// exactly. The sequence is not re-canonicalized.
func LoadArchitecture(dirPath string, trialID int) (Architecture, error) {
	f, err := os.Open(archFile(dirPath, trialID))
	if err != nil {
		return nil, errors.Errorf("Can't load architecture, no record for trial %d in %s", trialID, dirPath)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "Can't load architecture for trial %d", trialID)
	}

	return decodeArchitecture(lines)
}

// SetNumberOfTowers records how many towers the named generator contributed in the trial that
// owns dirPath. Downstream ensembling/aggregation collaborators read this count.
func SetNumberOfTowers(dirPath, generatorName string, n int) error {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return errors.Wrapf(err, "Couldn't make directory to record tower count")
	}

	f, err := os.Create(towersFile(dirPath, generatorName))
	if err != nil {
		return errors.Wrapf(err, "Can't record tower count for %q in %s", generatorName, dirPath)
	}
	defer f.Close()

	if _, err = f.WriteString(strconv.Itoa(n) + "\n"); err != nil {
		return errors.Wrapf(err, "Can't record tower count for %q", generatorName)
	}
	return nil
}

// GetNumberOfTowers reads the tower count recorded by SetNumberOfTowers. ErrNoTowerRecord is
// returned if the generator never recorded a count in this directory.
func GetNumberOfTowers(dirPath, generatorName string) (int, error) {
	f, err := os.Open(towersFile(dirPath, generatorName))
	if err != nil {
		return 0, ErrNoTowerRecord
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, errors.Errorf("Tower count record for %q in %s is empty", generatorName, dirPath)
	}

	n, err := strconv.Atoi(sc.Text())
	if err != nil {
		return 0, errors.Errorf("Tower count record for %q in %s is not a number", generatorName, dirPath)
	}
	return n, nil
}

// LoadTower clones the single tower recorded by the given trial into newDir: a structural copy
// of the persisted architecture, not a fresh search. The returned tower carries the source
// model directory as its snapshot lineage.
func LoadTower(from Trial, newDir string, newTrialID int, towerName string) (Tower, error) {
	arch, err := LoadArchitecture(from.ModelDir, from.ID)
	if err != nil {
		return Tower{}, errors.Wrapf(err, "Can't clone tower from trial %d", from.ID)
	}

	if err := SaveArchitecture(newDir, newTrialID, arch); err != nil {
		return Tower{}, errors.Wrapf(err, "Can't clone tower from trial %d into %s", from.ID, newDir)
	}

	return Tower{
		Name:             towerName,
		Architecture:     arch,
		PreviousModelDir: from.ModelDir,
	}, nil
}
