// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cluster starts a compute cluster and trains the demo network on
// it.
//
// # Overview
//
// A Cluster owns a fixed team of cores, a two-tier memory arena and a
// transfer engine, plus one matmul manager and convolution kernel per
// precision. Its Config is loaded from YAML and sized after the host by
// default.
//
// # Basic Usage
//
//	cfg, err := cluster.LoadConfig("cluster.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	c, err := cluster.New(*cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	net, err := cluster.NewNet[float32](c, cluster.DefaultTopology(), 0.5)
package cluster
