package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Krimson/eeg-explorer/viewer/internal/explorer"
	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

func newSubjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "Print the subject catalog",
		Long:  `Print the subjects found in the data directory, or in the remote store when the directory is empty.`,
		Args:  cobra.NoArgs,
		RunE:  runSubjects,
	}
}

func runSubjects(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}

	resolver, closeStore, err := a.newResolver(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	subjects, err := resolver.Subjects(cmd.Context())
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return noticeError(recording.ErrNoDatasetsFound)
	}

	out := cmd.OutOrStdout()
	for _, s := range subjects {
		fmt.Fprintln(out, s)
	}
	return nil
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <subject> <condition> <task>",
		Short: "Download one recording into the local cache",
		Long: `Resolve a selection and make sure its dataset is in the local cache.

Examples:
  viewer fetch 01 NS "Eyes Open"
  viewer fetch 07 ses-2 eyesclosed`,
		Args: cobra.ExactArgs(3),
		RunE: runFetch,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}

	condition, err := recording.ParseCondition(args[1])
	if err != nil {
		return noticeError(err)
	}
	task, err := recording.ParseTask(args[2])
	if err != nil {
		return noticeError(err)
	}

	resolver, closeStore, err := a.newResolver(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	session := recording.Session{SubjectID: strings.TrimPrefix(args[0], "sub-"), Condition: condition, Task: task}
	key := session.Key()

	table, err := resolver.Fetch(cmd.Context(), key)
	if err != nil {
		a.log.Warn().Err(err).Str("key", key.String()).Msg("fetch failed")
		return noticeError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "key:      %s\n", key)
	fmt.Fprintf(out, "rows:     %d\n", table.Len())
	fmt.Fprintf(out, "channels: %s\n", strings.Join(table.Channels, ", "))
	return nil
}

// noticeError превращает ошибку конвейера в сообщение для пользователя
func noticeError(err error) error {
	n := explorer.NoticeFor(err)
	return fmt.Errorf("%s: %s", n.Kind, n.Message)
}
