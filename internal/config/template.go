package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the annotated config written on first run.
const configTemplate = `# tempoit configuration - ~/.tempoit/config.yaml
#
# Every key can be overridden by an environment variable with the TEMPOIT_
# prefix, dots replaced by underscores (TEMPOIT_PASSWORD, TEMPOIT_TIMEW_BINARY).
# Prefer the environment for secrets.

# Jira server root, without trailing slash.
base_url: https://tasks.opencraft.com

# Jira credentials. Worklogs are filed for this user.
username: ""
password: ""

# Personal access token. When set, the login form is skipped and the
# token is sent as a bearer token instead of the password.
token: ""

# Tags matching this pattern are treated as issue keys (case-insensitive).
ticket_regex: '^(?i:FAL|SE|BB|OC|MNG|BIZ|ADMIN)-\d+$'

# IANA timezone used to decide which day a worklog belongs to, e.g.
# "Europe/Berlin". Leave empty to use the system's local timezone.
timezone: ""

# HTTP timeout per request.
timeout: 30s

timew:
  binary: timew
  # Intervals exported with: timew export <filter...>
  filter:
    - log
  # Added on successful upload.
  logged_tag: logged
  # Removed on successful upload.
  pending_tag: log
  # Added on failed upload, removed on success.
  failed_tag: logfail

journal:
  # Local SQLite record of every upload attempt. Empty disables it.
  path: ~/.tempoit/journal.db
`

// WriteDefault creates the config directory and writes the annotated
// default config template.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
