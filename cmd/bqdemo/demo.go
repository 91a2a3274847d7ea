package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/huynhanx03/go-blockingqueue/pkg/datastructs/queue"
)

func newBasicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "basic",
		Short: "Fill a queue of capacity 3 and take two items back",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return basicDemo(cmd.OutOrStdout())
		},
	}
}

func newTimeoutCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "timeout",
		Short: "Show a timed insert and remove on a queue of capacity 1",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return timeoutDemo(cmd.OutOrStdout(), timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "wait", time.Second, "timeout for the offer and poll calls")
	return cmd
}

func basicDemo(w io.Writer) error {
	q, err := queue.NewBlocking[int](3)
	if err != nil {
		return err
	}

	for i := 1; i <= 3; i++ {
		if err := q.Put(i); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "size: %d\n", q.Size())
	fmt.Fprintf(w, "full: %t\n", q.IsFull())

	for range 2 {
		v, err := q.Take()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "took: %d\n", v)
	}
	fmt.Fprintf(w, "size: %d\n", q.Size())
	fmt.Fprintf(w, "empty: %t\n", q.IsEmpty())
	return nil
}

func timeoutDemo(w io.Writer, timeout time.Duration) error {
	q, err := queue.NewBlocking[int](1)
	if err != nil {
		return err
	}
	if err := q.Put(1); err != nil {
		return err
	}
	fmt.Fprintf(w, "full: %t\n", q.IsFull())

	err = q.Offer(2, timeout)
	fmt.Fprintf(w, "offer 2 within %v: %t\n", timeout, err == nil)

	for range 2 {
		res := q.Poll(timeout)
		if v, ok := res.Value(); ok {
			fmt.Fprintf(w, "poll: %d\n", v)
			continue
		}
		fmt.Fprintf(w, "poll within %v: %s\n", timeout, res.Status())
	}
	return nil
}
