package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/erc7824/solrpc/pkg/journal"
	"github.com/erc7824/solrpc/pkg/rpc"
	"github.com/erc7824/solrpc/pkg/sign"
)

var healthCommand = &cli.Command{
	Name:  "health",
	Usage: "check that the node is healthy",
	Action: func(c *cli.Context) error {
		rt := runtimeFrom(c)
		ctx, cancel := context.WithTimeout(c.Context, rt.cfg.RequestTimeout)
		defer cancel()

		health, err := rt.client.GetHealth(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, health)
		return nil
	},
}

var accountCommand = &cli.Command{
	Name:      "account",
	Usage:     "show an account",
	ArgsUsage: "<pubkey>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.ShowSubcommandHelp(c)
		}
		key, err := sign.ParsePublicKey(c.Args().First())
		if err != nil {
			return err
		}

		rt := runtimeFrom(c)
		ctx, cancel := context.WithTimeout(c.Context, rt.cfg.RequestTimeout)
		defer cancel()

		info, err := rt.client.GetAccountInfo(ctx, key)
		if err != nil {
			return err
		}
		data, err := info.Data.Bytes()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Address:\t%s\n", key)
		fmt.Fprintf(w, "Balance:\t%s SOL\n", FormatSOL(info.Lamports))
		fmt.Fprintf(w, "Owner:\t%s\n", info.Owner)
		fmt.Fprintf(w, "Executable:\t%t\n", info.Executable)
		fmt.Fprintf(w, "Rent epoch:\t%d\n", info.RentEpoch)
		fmt.Fprintf(w, "Data:\t%d bytes\n", len(data))
		fmt.Fprintf(w, "Slot:\t%d\n", info.Slot)
		return w.Flush()
	},
}

var blockhashCommand = &cli.Command{
	Name:  "blockhash",
	Usage: "show a recent blockhash and the fee per signature",
	Action: func(c *cli.Context) error {
		rt := runtimeFrom(c)
		ctx, cancel := context.WithTimeout(c.Context, rt.cfg.RequestTimeout)
		defer cancel()

		rb, err := rt.client.GetRecentBlockhash(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Blockhash:\t%s\n", rb.Blockhash)
		fmt.Fprintf(w, "Fee:\t%d lamports per signature\n", rb.LamportsPerSignature)
		fmt.Fprintf(w, "Slot:\t%d\n", rb.Slot)
		return w.Flush()
	},
}

var transferCommand = &cli.Command{
	Name:  "transfer",
	Usage: "send SOL from the configured key",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "to", Usage: "receiver address", Required: true},
		&cli.StringFlag{Name: "amount", Usage: "amount in SOL, e.g. 0.5", Required: true},
		&cli.BoolFlag{Name: "wait", Usage: "wait until the node reports the transaction processed"},
	},
	Action: func(c *cli.Context) error {
		rt := runtimeFrom(c)

		to, err := sign.ParsePublicKey(c.String("to"))
		if err != nil {
			return fmt.Errorf("invalid receiver: %w", err)
		}
		lamports, err := ParseSOL(c.String("amount"))
		if err != nil {
			return err
		}
		signer, err := rt.cfg.Signer()
		if err != nil {
			return err
		}

		res, err := rt.transfer(c.Context, transferOrder{
			signer:   signer,
			to:       to,
			lamports: lamports,
			wait:     c.Bool("wait"),
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(c.App.Writer, res.signature)
		if res.status != "" {
			fmt.Fprintf(c.App.Writer, "%s at slot %d\n", res.status, res.slot)
		}
		return res.txErr
	},
}

var historyCommand = &cli.Command{
	Name:  "history",
	Usage: "list journaled transfers",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "status", Usage: "only show pending, confirmed or failed transfers"},
		&cli.IntFlag{Name: "limit", Usage: "maximum number of transfers", Value: 20},
	},
	Action: func(c *cli.Context) error {
		rt := runtimeFrom(c)
		store, err := rt.journal()
		if err != nil {
			return err
		}

		status := journal.Status(c.String("status"))
		switch status {
		case "", journal.StatusPending, journal.StatusConfirmed, journal.StatusFailed:
		default:
			return fmt.Errorf("unknown status %q", status)
		}

		records, err := store.List(c.Context, journal.ListOptions{Status: status, Limit: c.Int("limit")})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SIGNATURE\tTO\tAMOUNT\tSTATUS\tSLOT\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				r.Signature, r.Receiver, FormatSOL(r.Lamports), r.Status, r.Slot, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

type transferOrder struct {
	signer   sign.Signer
	to       sign.PublicKey
	lamports uint64
	wait     bool
}

type transferResult struct {
	signature sign.Signature
	status    journal.Status
	slot      uint64
	txErr     error
}

// transfer fetches a blockhash, journals the transfer and submits it. With
// wait set, the signature subscription is placed before the transaction is
// sent so the notification cannot be missed.
func (rt *runtime) transfer(ctx context.Context, o transferOrder) (*transferResult, error) {
	store, err := rt.journal()
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, rt.cfg.RequestTimeout)
	defer cancel()

	rb, err := rt.client.GetRecentBlockhash(reqCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	acks := make(chan error, 1)
	req, err := rpc.NewTransfer(rpc.TransferParams{
		From:      o.signer,
		To:        o.to,
		Lamports:  o.lamports,
		Blockhash: rb.Blockhash,
	}, func(_ sign.Signature, err error) { acks <- err })
	if err != nil {
		return nil, err
	}
	sig := req.Signature()
	lg := rt.lg.WithKV("signature", sig.String())

	type outcome struct {
		status rpc.SignatureStatus
		err    error
	}
	var sub *rpc.Subscription[rpc.SignatureStatus]
	outcomes := make(chan outcome, 1)
	if o.wait {
		if err := rt.stream(ctx); err != nil {
			return nil, err
		}
		sub = rpc.NewSignatureSubscribe(sig, func(status rpc.SignatureStatus, err error) {
			outcomes <- outcome{status, err}
		})
		if _, err := rt.client.Submit(reqCtx, sub); err != nil {
			return nil, fmt.Errorf("failed to subscribe to signature: %w", err)
		}
	}

	if err := store.Record(ctx, &journal.TransferRecord{
		Signature: sig.String(),
		Sender:    o.signer.PublicKey().String(),
		Receiver:  o.to.String(),
		Lamports:  o.lamports,
		Blockhash: rb.Blockhash.String(),
	}); err != nil {
		return nil, err
	}

	if _, err := rt.client.Submit(reqCtx, req); err != nil {
		_ = store.MarkFailed(ctx, sig.String(), 0, err.Error())
		return nil, err
	}
	select {
	case err := <-acks:
		if err != nil {
			_ = store.MarkFailed(ctx, sig.String(), 0, err.Error())
			return nil, fmt.Errorf("transfer rejected: %w", err)
		}
	case <-reqCtx.Done():
		return nil, reqCtx.Err()
	}
	lg.Info("transfer submitted", "lamports", o.lamports, "to", o.to.String())

	res := &transferResult{signature: sig}
	if !o.wait {
		return res, nil
	}

	select {
	case out := <-outcomes:
		res.slot = out.status.Slot
		var txErr *rpc.TransactionError
		switch {
		case out.err == nil:
			res.status = journal.StatusConfirmed
			err = store.MarkConfirmed(ctx, sig.String(), out.status.Slot)
		case errors.As(out.err, &txErr):
			res.status = journal.StatusFailed
			res.txErr = txErr
			err = store.MarkFailed(ctx, sig.String(), out.status.Slot, string(txErr.Raw))
		default:
			return nil, out.err
		}
		lg.Info("transfer processed", "status", res.status, "slot", res.slot)
		return res, err
	case <-ctx.Done():
		rt.client.DeregisterSubscription(sub)
		return nil, ctx.Err()
	}
}
