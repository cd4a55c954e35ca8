package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "meatpack", "cli":
		return cliTemplate, nil
	case "meatpackd", "server":
		return serverTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const cliTemplate = `[packer]
buffer_size = 256
strip_comments = false
strip_whitespace = false

[unpacker]
buffer_size = 256

[serial]
port = "/dev/ttyUSB0"
baud = 115200
read_timeout = "1s"
`

const serverTemplate = `log_level = "info"

[packer]
buffer_size = 256

[unpacker]
buffer_size = 256

[server]
name = "meatpackd"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
max_body_bytes = 8388608
`
