// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command guardian scans source trees for security, performance,
// maintainability and machine-generated-code issues.
//
// Usage:
//
//	guardian scan ./src
//	guardian scan --format sarif --output results.sarif .
//	guardian watch .
//	guardian serve --addr :8080 --root /srv/code
//	guardian config init
//
// Exit Codes:
//
//	0 = No critical issues
//	1 = Critical issues found
//	2 = Error (configuration, path, scan failure)
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
