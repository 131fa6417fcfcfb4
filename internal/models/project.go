package models

import "time"

type Project struct {
	ID          int64     `json:"id" yaml:"-"`
	Title       string    `json:"title" yaml:"title"`
	Description *string   `json:"description,omitempty" yaml:"description"`
	Category    string    `json:"category" yaml:"category"`
	Year        string    `json:"year" yaml:"year"`
	Image       *string   `json:"image,omitempty" yaml:"image"`
	TechStack   []string  `json:"tech_stack" yaml:"tech_stack"`
	GitHubURL   *string   `json:"github_url,omitempty" yaml:"github_url"`
	LiveURL     *string   `json:"live_url,omitempty" yaml:"live_url"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}
