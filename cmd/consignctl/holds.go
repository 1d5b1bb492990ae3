package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/consignd/internal/app"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Release every checkout and hold whose window has lapsed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), app.Options{}, func(a *app.App) error {
				res, err := a.Sweeper.Sweep(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "cancelled orders: %d\nreleased holds:   %d\nfailed:           %d\n",
					res.CancelledOrders, res.ReleasedHolds, res.Failed)

				if res.Failed > 0 {
					return fmt.Errorf("%d releases failed", res.Failed)
				}

				return nil
			})
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair listings whose state disagrees with their orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), app.Options{}, func(a *app.App) error {
				res, err := a.Holds.Reconcile(cmd.Context(), hold.ActorSystem)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(),
					"checked: %d\nmarked sold: %d\nreleased: %d\nnormalized: %d\nfailed: %d\n",
					res.Checked, res.MarkedSold, res.Released, res.Normalized, res.Failed)

				if res.Failed > 0 {
					return fmt.Errorf("%d listings could not be reconciled", res.Failed)
				}

				return nil
			})
		},
	}
}

func releaseCmd() *cobra.Command {
	var listingID, orderID, reason string

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Release the hold on a listing or cancel a pending order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := hold.ReleaseInput{Reason: hold.Reason(reason), Actor: actorCLI}

			switch {
			case listingID != "" && orderID != "":
				return errors.New("use either --listing or --order")
			case listingID != "":
				id, err := uuid.Parse(listingID)
				if err != nil {
					return fmt.Errorf("invalid listing id: %w", err)
				}

				in.ListingID = id
			case orderID != "":
				id, err := uuid.Parse(orderID)
				if err != nil {
					return fmt.Errorf("invalid order id: %w", err)
				}

				in.OrderID = id
			default:
				return errors.New("--listing or --order is required")
			}

			return withApp(cmd.Context(), app.Options{}, func(a *app.App) error {
				res, err := a.Holds.Release(cmd.Context(), in)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "listings released: %d\norder cancelled:   %t\n",
					res.ListingsReleased, res.OrderCancelled)

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&listingID, "listing", "", "Listing ID to release")
	cmd.Flags().StringVar(&orderID, "order", "", "Order ID to cancel")
	cmd.Flags().StringVar(&reason, "reason", string(hold.ReasonAdminCleanup), "Release reason")

	return cmd
}

func markSoldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-sold <order-id> <payment-reference>",
		Short: "Apply a payment confirmed outside the webhook flow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id: %w", err)
			}

			return withApp(cmd.Context(), app.Options{}, func(a *app.App) error {
				res, err := a.Holds.ConvertToSale(cmd.Context(), hold.SaleInput{
					OrderID:          orderID,
					PaymentReference: args[1],
					Actor:            actorCLI,
				})
				if err != nil {
					return err
				}

				switch {
				case res.AlreadyPaid:
					fmt.Fprintln(cmd.OutOrStdout(), "order was already paid")
				case res.Revived:
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled order revived and marked paid")
				default:
					fmt.Fprintln(cmd.OutOrStdout(), "order marked paid")
				}

				return nil
			})
		},
	}
}
