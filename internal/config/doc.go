// Package config loads viewrouter.json.
//
// # Configuration File Structure
//
//	{
//	  "name": "demo",
//	  "history": "web",
//	  "routes": [
//	    {"path": "/", "view": "main"},
//	    {"path": "/config", "view": "config"}
//	  ],
//	  "server": {"host": "0.0.0.0", "port": 8080},
//	  "assets": {
//	    "dir": "public",
//	    "prefix": "/assets/",
//	    "s3": {"bucket": "demo-site", "prefix": "assets", "region": "eu-west-1"}
//	  },
//	  "logging": {"level": "info", "format": "json"},
//	  "metrics": {"enabled": true, "path": "/metrics", "namespace": "demo"},
//	  "tracing": {"enabled": false, "tracerName": "demo"}
//	}
//
// VIEWROUTER_HISTORY, VIEWROUTER_PORT and VIEWROUTER_LOG_LEVEL override the
// file when set.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
