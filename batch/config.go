package batch

import (
	"fmt"
	"os"

	"imagediff/codec"
	"imagediff/compare"
	"imagediff/diffimage"
	"imagediff/types"
	"imagediff/utils"

	"gopkg.in/yaml.v2"
)

// Config is the YAML batch configuration: a list of comparisons plus a
// defaults block merged into every job that leaves a field unset.
type Config struct {
	Defaults    DefaultsConfig `yaml:"defaults"`
	Comparisons []JobConfig    `yaml:"comparisons"`
}

// DefaultsConfig holds global settings applied to all comparisons
type DefaultsConfig struct {
	Algorithm          string   `yaml:"algorithm"`
	Threshold          *float64 `yaml:"threshold"`
	IgnoreAntialiasing *bool    `yaml:"ignore_antialiasing"`
	DiffColor          string   `yaml:"diff_color"`
	Concurrency        int      `yaml:"concurrency"`
}

// JobConfig is one comparison in the configuration file
type JobConfig struct {
	Name               string   `yaml:"name"`
	ImageA             string   `yaml:"image_a"`
	ImageB             string   `yaml:"image_b"`
	Algorithm          string   `yaml:"algorithm"`
	Threshold          *float64 `yaml:"threshold"`
	IgnoreAntialiasing *bool    `yaml:"ignore_antialiasing"`
	DiffOutput         string   `yaml:"diff_output"`
	DiffColor          string   `yaml:"diff_color"`
}

// LoadConfig reads and parses a YAML batch configuration file
func LoadConfig(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %v", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %v", path, err)
	}

	return &cfg, nil
}

// Jobs merges the defaults block into each comparison and validates the
// whole batch eagerly. A configuration mistake (unknown algorithm,
// invalid threshold, unencodable diff output) aborts before any job
// runs, since it means the entire batch is misconfigured.
func (c *Config) Jobs() ([]Job, error) {
	if len(c.Comparisons) == 0 {
		return nil, fmt.Errorf("no comparisons defined in configuration")
	}

	jobs := make([]Job, 0, len(c.Comparisons))
	for i, jc := range c.Comparisons {
		job, err := c.buildJob(jc)
		if err != nil {
			return nil, fmt.Errorf("comparison %d (%s vs %s): %w", i, jc.ImageA, jc.ImageB, err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (c *Config) buildJob(jc JobConfig) (Job, error) {
	var job Job

	if jc.ImageA == "" || jc.ImageB == "" {
		return job, fmt.Errorf("both image_a and image_b must be set")
	}

	algName := jc.Algorithm
	if algName == "" {
		algName = c.Defaults.Algorithm
	}
	if algName == "" {
		algName = types.PixelDiff.String()
	}
	algorithm, err := types.ParseAlgorithm(algName)
	if err != nil {
		return job, err
	}

	opts := compare.DefaultOptions(algorithm)

	threshold := jc.Threshold
	if threshold == nil {
		threshold = c.Defaults.Threshold
	}
	if threshold != nil {
		opts.Threshold = *threshold
	}
	if err := compare.ValidateThreshold(algorithm, opts.Threshold); err != nil {
		return job, err
	}

	ignoreAA := jc.IgnoreAntialiasing
	if ignoreAA == nil {
		ignoreAA = c.Defaults.IgnoreAntialiasing
	}
	if ignoreAA != nil {
		opts.IgnoreAntialiasing = *ignoreAA
	}

	diffColor := diffimage.DefaultHighlight
	colorSpec := jc.DiffColor
	if colorSpec == "" {
		colorSpec = c.Defaults.DiffColor
	}
	if colorSpec != "" {
		diffColor, err = utils.ParseDiffColor(colorSpec)
		if err != nil {
			return job, err
		}
	}

	if jc.DiffOutput != "" {
		if err := codec.ValidateOutputPath(jc.DiffOutput); err != nil {
			return job, err
		}
	}

	job = Job{
		Name:       jc.Name,
		ImageA:     jc.ImageA,
		ImageB:     jc.ImageB,
		Options:    opts,
		DiffOutput: jc.DiffOutput,
		DiffColor:  diffColor,
	}
	return job, nil
}
