package auth

import (
	"fmt"

	"golang.org/x/oauth2"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes needed to read the activity history and athlete profile
// (Strava uses comma-separated scopes)
var Scopes = []string{
	"read,profile:read_all,activity:read_all",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackPort int // 0 means CallbackPort
}

// RedirectURL is where Strava sends the browser after consent
func (c Config) RedirectURL() string {
	port := c.CallbackPort
	if port == 0 {
		port = CallbackPort
	}
	return fmt.Sprintf("http://localhost:%d/callback", port)
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL(),
		Scopes:      Scopes,
	}
}

// Result contains the token and athlete info from a successful login
type Result struct {
	Token     *oauth2.Token
	AthleteID int64
}

// ExtractAthleteID reads the athlete id Strava embeds in the token response
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]any); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}
