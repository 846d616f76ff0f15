// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bitledger/chaindb/conf"
	"github.com/bitledger/chaindb/log"
	"github.com/bitledger/chaindb/store"
	"github.com/bitledger/chaindb/store/schema"
)

var dataDir string

var dataDirFlag = &cli.StringFlag{
	Name:        "data.dir",
	Usage:       "store root directory",
	Category:    "STORE",
	Value:       "./chaindata",
	Destination: &dataDir,
}

func main() {
	app := &cli.App{
		Name:      "chainctl",
		Usage:     "inspect and operate a chaindb store",
		Flags:     []cli.Flag{dataDirFlag},
		Commands: []*cli.Command{
			createCommand,
			headerCommand,
			txCommand,
			confirmCommand,
			gapCommand,
			snapshotCommand,
		},
		Copyright: "Copyright 2022-2026 The N42 Authors",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func storeConfig() conf.StoreConfig {
	cfg := conf.DefaultStoreConfig(dataDir)
	_ = cfg.Validate()
	return cfg
}

var createCommand = &cli.Command{
	Name:  "create",
	Usage: "lay down a fresh store directory tree",
	Action: func(ctx *cli.Context) error {
		if err := store.Create(storeConfig()); err != nil {
			return errors.Wrap(err, "create store")
		}
		log.Info("store created", "path", dataDir)
		return nil
	},
}

var headerCommand = &cli.Command{
	Name:  "header",
	Usage: "inspect or write block headers",
	Subcommands: []*cli.Command{
		{
			Name:      "put",
			Usage:     "insert a header",
			ArgsUsage: "<hash-hex> <height>",
			Action: func(ctx *cli.Context) error {
				hash, err := parseHash(ctx.Args().Get(0))
				if err != nil {
					return err
				}
				var height uint64
				if _, err := fmt.Sscanf(ctx.Args().Get(1), "%d", &height); err != nil {
					return errors.Wrap(err, "parse height")
				}
				return withStore(func(s *store.Store) error {
					h := &schema.Header{Height: uint32(height)}
					if err := s.PutHeader(hash, h); err != nil {
						return errors.Wrap(err, "put header")
					}
					log.Info("header written", "hash", ctx.Args().Get(0), "height", height)
					return nil
				})
			},
		},
		{
			Name:      "get",
			Usage:     "look up a header",
			ArgsUsage: "<hash-hex>",
			Action: func(ctx *cli.Context) error {
				hash, err := parseHash(ctx.Args().Get(0))
				if err != nil {
					return err
				}
				return withStore(func(s *store.Store) error {
					h, ok := s.GetHeader(hash)
					if !ok {
						return errors.New("header not found")
					}
					fmt.Printf("height=%d total=%s\n", h.Height, h.Total.String())
					return nil
				})
			},
		},
	},
}

var txCommand = &cli.Command{
	Name:  "tx",
	Usage: "inspect or write transactions",
	Subcommands: []*cli.Command{
		{
			Name:      "put",
			Usage:     "insert a transaction's raw bytes",
			ArgsUsage: "<hash-hex> <raw-hex>",
			Action: func(ctx *cli.Context) error {
				hash, err := parseHash(ctx.Args().Get(0))
				if err != nil {
					return err
				}
				raw, err := hex.DecodeString(ctx.Args().Get(1))
				if err != nil {
					return errors.Wrap(err, "decode raw bytes")
				}
				return withStore(func(s *store.Store) error {
					if err := s.PutTx(hash, &schema.Tx{Raw: raw}); err != nil {
						return errors.Wrap(err, "put tx")
					}
					log.Info("tx written", "hash", ctx.Args().Get(0), "bytes", len(raw))
					return nil
				})
			},
		},
		{
			Name:      "get",
			Usage:     "look up a transaction",
			ArgsUsage: "<hash-hex>",
			Action: func(ctx *cli.Context) error {
				hash, err := parseHash(ctx.Args().Get(0))
				if err != nil {
					return err
				}
				return withStore(func(s *store.Store) error {
					tx, ok := s.GetTx(hash)
					if !ok {
						return errors.New("tx not found")
					}
					fmt.Println(hex.EncodeToString(tx.Raw))
					return nil
				})
			},
		},
	},
}

var confirmCommand = &cli.Command{
	Name:      "confirm",
	Usage:     "mark a height confirmed at the current time",
	ArgsUsage: "<height>",
	Action: func(ctx *cli.Context) error {
		var height uint64
		if _, err := fmt.Sscanf(ctx.Args().Get(0), "%d", &height); err != nil {
			return errors.Wrap(err, "parse height")
		}
		return withStore(func(s *store.Store) error {
			if err := s.ConfirmHeight(uint32(height), time.Now().Unix()); err != nil {
				return errors.Wrap(err, "confirm height")
			}
			log.Info("height confirmed", "height", height)
			return nil
		})
	},
}

var gapCommand = &cli.Command{
	Name:      "gap",
	Usage:     "report the lowest unconfirmed height below a ceiling",
	ArgsUsage: "<ceiling>",
	Action: func(ctx *cli.Context) error {
		var ceiling uint64
		if _, err := fmt.Sscanf(ctx.Args().Get(0), "%d", &ceiling); err != nil {
			return errors.Wrap(err, "parse ceiling")
		}
		return withStore(func(s *store.Store) error {
			gap, ok := s.NextGap(uint32(ceiling))
			if !ok {
				fmt.Println("no gap below ceiling")
				return nil
			}
			fmt.Println(gap)
			return nil
		})
	},
}

var snapshotCommand = &cli.Command{
	Name:  "snapshot",
	Usage: "flush every table and record its body size for recovery",
	Action: func(ctx *cli.Context) error {
		return withStore(func(s *store.Store) error {
			if err := s.Snapshot(); err != nil {
				return errors.Wrap(err, "snapshot")
			}
			log.Info("snapshot complete")
			return nil
		})
	},
}

func withStore(fn func(*store.Store) error) error {
	s, err := store.Open(storeConfig())
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer s.Close()
	return fn(s)
}

func parseHash(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, errors.Wrap(err, "decode hash")
	}
	if len(b) != 32 {
		return out, errors.Errorf("hash must be 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
