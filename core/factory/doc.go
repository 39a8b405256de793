// Package factory instantiates pluggable modules from configuration. A module
// is described by a type name and a map of raw settings; the factory
// registered for that type decodes the settings into its own struct.
//
// Battery sources and metrics sinks are built this way:
//
//	battery:
//	  sources:
//	    - type: file
//	      conf:
//	        path: data/zendure_data.json
//	        max_age_seconds: 600
//	    - type: http
//	      conf:
//	        url: http://localhost/data
package factory
