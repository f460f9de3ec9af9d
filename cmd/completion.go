package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_stagedit() {
    local cur prev words cword
    _init_completion || return

    local commands="edit history diff help completion"
    local common="-v --verbose -q --quiet --config --history-db"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    case "$prev" in
        --original|--reference|--config|--history-db)
            _filedir
            return
            ;;
        --root)
            _filedir -d
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        edit)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "$common --original --reference --markers --remove-empty-parent --root --diff --strict --no-history" -- "$cur"))
            else
                _filedir
            fi
            ;;
        history|diff)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "$common" -- "$cur"))
            else
                _filedir
            fi
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _stagedit stagedit
`

const zshCompletion = `#compdef stagedit

_stagedit() {
    local -a commands common
    commands=(
        'edit:Edit files through staging copies and install the result'
        'history:Show recorded installs'
        'diff:Show what the last install of a file changed'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )
    common=(
        '(-v --verbose)'{-v,--verbose}'[Show debug output]'
        '(-q --quiet)'{-q,--quiet}'[Only show warnings and errors]'
        '--config[Config file]:config file:_files'
        '--history-db[Install history database]:database:_files'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'stagedit commands' commands
            ;;
        args)
            case "${words[2]}" in
                edit)
                    _arguments \
                        $common \
                        '--original[Seed the staging copy from this file]:file:_files' \
                        '*--reference[Show this file as a commented reference]:file:_files' \
                        '--markers[Wrap the content in marker comments]' \
                        '--remove-empty-parent[Remove the parent directory if left empty]' \
                        '--root[Confine targets to this directory]:directory:_files -/' \
                        '--diff[Show a diff of each installed file]' \
                        '--strict[Install nothing if the editor exits non-zero]' \
                        '--no-history[Do not record installs]' \
                        '*:file:_files'
                    ;;
                history|diff)
                    _arguments $common '*:file:_files'
                    ;;
                help)
                    _describe -t commands 'stagedit commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_stagedit "$@"
`

const fishCompletion = `# stagedit fish completions

set -l commands edit history diff help completion

complete -c stagedit -f

# Commands
complete -c stagedit -n "not __fish_seen_subcommand_from $commands" -a edit -d 'Edit files through staging copies'
complete -c stagedit -n "not __fish_seen_subcommand_from $commands" -a history -d 'Show recorded installs'
complete -c stagedit -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Show what the last install changed'
complete -c stagedit -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c stagedit -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# Common flags
complete -c stagedit -n "__fish_seen_subcommand_from edit history diff" -s v -l verbose -d 'Show debug output'
complete -c stagedit -n "__fish_seen_subcommand_from edit history diff" -s q -l quiet -d 'Only show warnings and errors'
complete -c stagedit -n "__fish_seen_subcommand_from edit history diff" -l config -r -F -d 'Config file'
complete -c stagedit -n "__fish_seen_subcommand_from edit history diff" -l history-db -r -F -d 'Install history database'

# edit flags and files
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l original -r -F -d 'Seed the staging copy from this file'
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l reference -r -F -d 'Show this file as a reference'
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l markers -d 'Wrap the content in marker comments'
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l remove-empty-parent -d 'Remove an empty parent directory'
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l root -r -a "(__fish_complete_directories)" -d 'Confine targets to a directory'
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l diff -d 'Show a diff of each installed file'
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l strict -d 'Install nothing on editor failure'
complete -c stagedit -n "__fish_seen_subcommand_from edit" -l no-history -d 'Do not record installs'
complete -c stagedit -n "__fish_seen_subcommand_from edit history diff" -F

# help completions
complete -c stagedit -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c stagedit -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
