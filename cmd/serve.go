package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizladder/internal/server"
	"github.com/abhisek/quizladder/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		bank, err := loadBank()
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		var events store.EventRepo
		if cfg.Server.RecordEvents {
			events = st.EventRepo()
		}

		srv := server.New(server.Deps{
			Controller: newController(),
			Bank:       bank,
			Tips:       newTips(cmd.Context(), st.EventRepo()),
			Events:     events,
			Log:        logger,
		}, server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Advisory:       cfg.Engine.Advisory,
			Act:            cfg.ActSource(),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
		})
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}
